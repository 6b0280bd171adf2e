package tokens

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/models"
)

// Blocklist is the persisted revocation set consulted on every Verify.
type Blocklist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Blocklist  Blocklist
}

type verifyConfig struct {
	fresh bool
}

type VerifyOption func(*verifyConfig)

// WithFresh additionally requires the fresh claim, set only on tokens
// minted directly from a password login.
func WithFresh() VerifyOption {
	return func(c *verifyConfig) { c.fresh = true }
}

// Mint signs a token of the given kind for user. is_admin is copied from
// the user row at mint time; verification never goes back to the user store.
func (i *Issuer) Mint(user *models.User, kind string, fresh bool) (string, *Claims, error) {
	ttl := i.AccessTTL
	if kind == TypeRefresh {
		ttl = i.RefreshTTL
	}
	now := time.Now()
	claims := &Claims{
		Type:    kind,
		Fresh:   fresh,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify decodes and validates a token string: signature, expiry, kind,
// blocklist membership and, with WithFresh, the fresh claim. An empty kind
// accepts either token kind (logout revokes whatever it is handed).
func (i *Issuer) Verify(ctx context.Context, raw, kind string, opts ...VerifyOption) (*Claims, error) {
	cfg := verifyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return i.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.Wrap(apperr.CodeTokenInvalid, "signature verification failed", err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, apperr.ErrTokenInvalid
	}
	if kind != "" && claims.Type != kind {
		return nil, apperr.ErrTokenInvalid
	}

	revoked, err := i.Blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperr.ErrTokenRevoked
	}

	if cfg.fresh && !claims.Fresh {
		return nil, apperr.ErrFreshRequired
	}

	return &claims, nil
}
