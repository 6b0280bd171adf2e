package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/hash"
	"github.com/Skotchmaster/stores_api/internal/logging"
	"github.com/Skotchmaster/stores_api/internal/mail"
	"github.com/Skotchmaster/stores_api/internal/models"
	"github.com/Skotchmaster/stores_api/internal/mykafka"
	"github.com/Skotchmaster/stores_api/internal/repo"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

type AuthHandler struct {
	Repo     *repo.Repo
	Issuer   *tokens.Issuer
	Producer mykafka.Publisher
	Mailer   mail.Mailer
	ResetTTL time.Duration
	ResetURL string
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperr.New(apperr.CodeInvalidArgument, "username, email and password are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := models.User{
		Username:     req.Username,
		Email:        repo.NormalizeEmail(req.Email),
		PasswordHash: pwHash,
	}
	if err := h.Repo.CreateUser(c.Request().Context(), &user); err != nil {
		return err
	}

	// Registration succeeded; email and event delivery cannot undo it.
	mail.Dispatch(c.Request().Context(), "registration", func(ctx context.Context) error {
		return h.Mailer.SendRegistration(ctx, user.Email, user.Username)
	})
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}

	// Unknown user and wrong password produce the same answer.
	user, err := h.Repo.UserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return apperr.ErrInvalidCredentials
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return apperr.ErrInvalidCredentials
	}

	access, _, err := h.Issuer.Mint(user, tokens.TypeAccess, true)
	if err != nil {
		return err
	}
	refresh, _, err := h.Issuer.Mint(user, tokens.TypeRefresh, false)
	if err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, tokenPair{AccessToken: access, RefreshToken: refresh})
}

// Refresh rotates the presented refresh token: its jti goes to the
// blocklist before the new pair is minted, so losing the response leaves
// no replayable token behind.
func (h *AuthHandler) Refresh(c echo.Context, claims *tokens.Claims) error {
	ctx := c.Request().Context()

	inserted, err := h.Repo.Revoke(ctx, claims)
	if err != nil {
		return err
	}
	if !inserted {
		// A concurrent refresh already consumed this token.
		return apperr.ErrTokenRevoked
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperr.ErrTokenInvalid
	}
	user, err := h.Repo.UserByID(ctx, userID)
	if err != nil {
		return apperr.ErrTokenInvalid
	}

	access, _, err := h.Issuer.Mint(user, tokens.TypeAccess, false)
	if err != nil {
		return err
	}
	refresh, _, err := h.Issuer.Mint(user, tokens.TypeRefresh, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenPair{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) Logout(c echo.Context, claims *tokens.Claims) error {
	// Idempotent: logging out twice with the same token is not an error.
	if _, err := h.Repo.Revoke(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}
