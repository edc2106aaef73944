package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/pkg/opaqueid"
)

// reasonResponse is the envelope for recoverable request errors. The reason
// is machine-readable; no further detail is exposed.
type reasonResponse struct {
	Reason string `json:"reason"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps validation-class domain errors to 400 with a reason code.
//   - Renders credential failures as empty 401/404 responses so the API
//     never reveals whether the name or the password was wrong.
//   - Logs unexpected errors internally and answers with an empty 500;
//     the failing transaction has already been rolled back by the store.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, reason := resolveError(err, log, c)
		if reason == "" {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, reasonResponse{Reason: reason})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest, "InvalidName"
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusBadRequest, "InvalidPassword"
	case errors.Is(err, domain.ErrNameExists):
		return http.StatusBadRequest, "NameExists"
	case errors.Is(err, opaqueid.ErrInvalidID):
		return http.StatusBadRequest, "InvalidID"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "TooManyAttempts"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ""
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ""
	}

	// Echo's own errors (404 from the router, method not allowed, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ""
	}

	// Unexpected error: log the real cause, return nothing to the client.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, ""
}
