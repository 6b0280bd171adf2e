package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/config"
	"github.com/Skotchmaster/stores_api/internal/handlers"
	"github.com/Skotchmaster/stores_api/internal/hash"
	"github.com/Skotchmaster/stores_api/internal/models"
	"github.com/Skotchmaster/stores_api/internal/repo"
	"github.com/Skotchmaster/stores_api/internal/tokens"
	httpserver "github.com/Skotchmaster/stores_api/internal/transport/http"
)

type fakeProducer struct {
	mu     sync.Mutex
	events []map[string]any
}

func (f *fakeProducer) PublishEvent(_ context.Context, _, _ string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := event.(map[string]any); ok {
		f.events = append(f.events, m)
	}
	return nil
}

func (f *fakeProducer) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, fmt.Sprint(e["type"]))
	}
	return out
}

type fakeMailer struct {
	mu        sync.Mutex
	sent      []string
	resetURLs []string
}

func (f *fakeMailer) SendRegistration(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, "registration:"+to)
	return nil
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, resetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, "password_reset:"+to)
	f.resetURLs = append(f.resetURLs, resetURL)
	return nil
}

func (f *fakeMailer) lastResetToken(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.resetURLs)
	url := f.resetURLs[len(f.resetURLs)-1]
	_, token, found := strings.Cut(url, "?token=")
	require.True(t, found, "reset url carries no token: %s", url)
	return token
}

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.Repo
	Issuer *tokens.Issuer
	Mailer *fakeMailer
	Events *fakeProducer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	r := repo.New(db)
	issuer := &tokens.Issuer{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Blocklist:  r,
	}
	mailer := &fakeMailer{}
	events := &fakeProducer{}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Issuer: issuer,
		AuthHandler: &handlers.AuthHandler{
			Repo:     r,
			Issuer:   issuer,
			Producer: events,
			Mailer:   mailer,
			ResetTTL: time.Hour,
			ResetURL: "http://localhost:3000/reset-password",
		},
		StoreHandler: &handlers.StoreHandler{DB: db},
		ItemHandler:  &handlers.ItemHandler{DB: db, Producer: events},
		TagHandler:   &handlers.TagHandler{DB: db},
	})

	return &testEnv{T: t, E: e, DB: db, Repo: r, Issuer: issuer, Mailer: mailer, Events: events}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return fmt.Sprint(decode(t, rec)["error"])
}

func (env *testEnv) register(username, email, password string) {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())
}

func (env *testEnv) login(username, password string) (access, refresh string) {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(env.T, rec)
	access, _ = resp["access_token"].(string)
	refresh, _ = resp["refresh_token"].(string)
	require.NotEmpty(env.T, access)
	require.NotEmpty(env.T, refresh)
	return access, refresh
}

func (env *testEnv) loginAdmin() (access, refresh string) {
	env.T.Helper()
	pwHash, err := hash.HashPassword("admin_password")
	require.NoError(env.T, err)
	admin := models.User{
		Username:     "admin",
		Email:        "admin@x.com",
		PasswordHash: pwHash,
		IsAdmin:      true,
	}
	require.NoError(env.T, env.DB.Create(&admin).Error)
	return env.login("admin", "admin_password")
}
