package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/logging"
)

// ErrorHandler renders every error as {"error": <code>, "description": <message>}
// with the status mapped from the code. Unknown errors become opaque 500s.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := apperr.CodeInternal
		switch he.Code {
		case http.StatusNotFound:
			code = apperr.CodeNotFound
		case http.StatusBadRequest:
			code = apperr.CodeInvalidArgument
		}
		_ = c.JSON(he.Code, echo.Map{"error": code, "description": fmt.Sprint(he.Message)})
		return
	}

	ae := apperr.From(err)
	status := apperr.Status(ae.Code)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}
	_ = c.JSON(status, ae)
}
