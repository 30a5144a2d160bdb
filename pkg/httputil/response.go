package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexgestion/portal-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error. RedirectTo carries the canonical landing
// path for the caller's role when access was denied, so the frontend can
// navigate instead of rendering a raw error.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response, mapping AppError codes to
// HTTP statuses. Unknown errors collapse to a 500 without leaking details.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := errors.AsAppError(err); ok {
		status = httpStatus(appErr.Code)
		message = appErr.Message
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}

// RespondWithRedirect sends a forbidden response carrying the route the
// caller should land on instead.
func RespondWithRedirect(c *gin.Context, message, redirectTo string) {
	c.JSON(http.StatusForbidden, Response{
		Success: false,
		Error: &Error{
			Code:       http.StatusForbidden,
			Message:    message,
			RedirectTo: redirectTo,
		},
	})
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
