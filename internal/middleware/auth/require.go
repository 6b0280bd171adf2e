package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

// HandlerWithClaims is a handler that receives the verified claims as an
// explicit argument instead of fishing them out of ambient request state.
type HandlerWithClaims func(c echo.Context, claims *tokens.Claims) error

// Require wraps a handler with bearer-token verification for the given
// token kind.
func Require(issuer *tokens.Issuer, kind string, next HandlerWithClaims, opts ...tokens.VerifyOption) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := BearerToken(c)
		if err != nil {
			return err
		}
		claims, err := issuer.Verify(c.Request().Context(), raw, kind, opts...)
		if err != nil {
			return err
		}
		return next(c, claims)
	}
}

// AdminOnly additionally requires the is_admin claim. The claim check runs
// before the handler touches any target resource, so a non-admin gets 403
// even for ids that do not exist.
func AdminOnly(issuer *tokens.Issuer, next HandlerWithClaims) echo.HandlerFunc {
	return Require(issuer, tokens.TypeAccess, func(c echo.Context, claims *tokens.Claims) error {
		if !claims.IsAdmin {
			return apperr.ErrForbidden
		}
		return next(c, claims)
	})
}

func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):], nil
	}
	return "", apperr.New(apperr.CodeTokenInvalid, "request does not contain an access token")
}
