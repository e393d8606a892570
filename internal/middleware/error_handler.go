package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"campuslink_echo/internal/services"
)

// ErrorResponse is the JSON envelope every error renders as.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HTTPStatus maps a classified service error to its status code.
// Unclassified errors are internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// JSONErrorHandler is the custom Echo error handler. Classified errors keep
// their message; internal errors are logged in full and the caller gets a
// generic message.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	} else if status := HTTPStatus(err); status != http.StatusInternalServerError {
		code = status
		message = err.Error()
	}

	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	resp := ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Code: code, Message: message},
	}

	if jsonErr := c.JSON(code, resp); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
