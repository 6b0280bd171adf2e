package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterConflict(t *testing.T) {
	env := newTestEnv(t)

	env.register("alice", "alice@x.com", "password")
	require.Contains(t, env.Events.types(), "user_registered")
	require.Contains(t, env.Mailer.sent, "registration:alice@x.com")

	rec := env.do(http.MethodPost, "/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", errCode(t, rec))

	// Same email modulo case and whitespace is still a duplicate.
	rec = env.do(http.MethodPost, "/register", map[string]string{
		"username": "alice2", "email": "  Alice@X.com ", "password": "password",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", errCode(t, rec))
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")

	wrongPassword := env.do(http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "nope",
	}, "")
	unknownUser := env.do(http.MethodPost, "/login", map[string]string{
		"username": "nobody", "password": "password",
	}, "")

	// Unknown user and wrong password are indistinguishable.
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.Equal(t, decode(t, wrongPassword), decode(t, unknownUser))
	require.Equal(t, "INVALID_CREDENTIALS", errCode(t, wrongPassword))
}

func TestLogoutRevokesForever(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	access, _ := env.login("alice", "password")

	rec := env.do(http.MethodPost, "/logout", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)

	// The jti stays rejected on every subsequent use.
	for i := 0; i < 3; i++ {
		rec = env.do(http.MethodPost, "/logout", nil, access)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "TOKEN_REVOKED", errCode(t, rec))
	}
}

func TestLogoutWithRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	_, refresh := env.login("alice", "password")

	rec := env.do(http.MethodPost, "/logout", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/refresh", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "TOKEN_REVOKED", errCode(t, rec))
}

func TestRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	_, r1 := env.login("alice", "password")

	first := env.do(http.MethodPost, "/refresh", nil, r1)
	require.Equal(t, http.StatusOK, first.Code)
	resp := decode(t, first)
	r2, _ := resp["refresh_token"].(string)
	require.NotEmpty(t, r2)
	require.NotEqual(t, r1, r2)

	// R1 was consumed by the rotation.
	second := env.do(http.MethodPost, "/refresh", nil, r1)
	require.Equal(t, http.StatusUnauthorized, second.Code)
	require.Equal(t, "TOKEN_REVOKED", errCode(t, second))

	// R2 is good for exactly one rotation of its own.
	third := env.do(http.MethodPost, "/refresh", nil, r2)
	require.Equal(t, http.StatusOK, third.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	access, _ := env.login("alice", "password")

	rec := env.do(http.MethodPost, "/refresh", nil, access)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "TOKEN_INVALID", errCode(t, rec))
}

func TestRefreshedTokenIsNotFresh(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	freshAccess, refresh := env.login("alice", "password")

	store := env.do(http.MethodPost, "/store", map[string]string{"name": "grocer"}, "")
	require.Equal(t, http.StatusCreated, store.Code)

	rec := env.do(http.MethodPost, "/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	staleAccess, _ := decode(t, rec)["access_token"].(string)
	require.NotEmpty(t, staleAccess)

	item := map[string]any{"name": "bread", "price": 1.5, "store_id": 1}

	denied := env.do(http.MethodPost, "/item", item, staleAccess)
	require.Equal(t, http.StatusUnauthorized, denied.Code)
	require.Equal(t, "FRESH_TOKEN_REQUIRED", errCode(t, denied))

	allowed := env.do(http.MethodPost, "/item", item, freshAccess)
	require.Equal(t, http.StatusCreated, allowed.Code)
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@x.com", "password")
	access, _ := env.login("alice", "password")

	// Authorization is checked before the lookup: a non-admin gets 403
	// even when the target id does not exist.
	rec := env.do(http.MethodDelete, "/user/99999", nil, access)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errCode(t, rec))

	rec = env.do(http.MethodGet, "/user/99999", nil, access)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminAccess, _ := env.loginAdmin()

	rec = env.do(http.MethodGet, "/user/99999", nil, adminAccess)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", errCode(t, rec))

	rec = env.do(http.MethodGet, "/user/1", nil, adminAccess)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "alice", body["username"])
	require.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodDelete, "/user/1", nil, adminAccess)
	require.Equal(t, http.StatusOK, rec.Code)

	login := env.do(http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestMissingToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/logout", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "TOKEN_INVALID", errCode(t, rec))
}
