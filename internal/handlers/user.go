package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeNotFound, "not found")
	}
	return uint(id), nil
}

// GetUser and DeleteUser run behind auth.AdminOnly, so by the time they
// execute the admin claim has already been accepted.
func (h *AuthHandler) GetUser(c echo.Context, _ *tokens.Claims) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.Repo.UserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context, _ *tokens.Claims) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
