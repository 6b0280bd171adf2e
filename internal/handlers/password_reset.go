package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/hash"
	"github.com/Skotchmaster/stores_api/internal/mail"
)

// ForgotPassword answers 202 with the same body whether or not the email
// matches an account, so responses cannot be used to enumerate users.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}

	accepted := echo.Map{"message": "If that account exists, an email will be sent shortly."}

	ctx := c.Request().Context()
	user, err := h.Repo.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.JSON(http.StatusAccepted, accepted)
		}
		return err
	}

	raw, err := h.Repo.CreateResetToken(ctx, user.ID, h.ResetTTL)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s?token=%s", h.ResetURL, raw)
	mail.Dispatch(ctx, "password_reset", func(ctx context.Context) error {
		return h.Mailer.SendPasswordReset(ctx, user.Email, user.Username, resetURL)
	})

	return c.JSON(http.StatusAccepted, accepted)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}
	if req.Token == "" || req.Password == "" {
		return apperr.ErrResetTokenInvalid
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := h.Repo.ConsumeResetToken(c.Request().Context(), req.Token, pwHash); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully."})
}
