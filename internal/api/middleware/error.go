package middleware

import (
	"errors"
	"log"
	"net/http"

	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string                `json:"error"`
	Details []services.FieldError `json:"details,omitempty"`
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Internal failures are logged and reported with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := Translate(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[api] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(status, body)
	}
}

// Translate maps a service error to its HTTP status and response body
func Translate(err error) (int, any) {
	var serr *services.Error
	if !errors.As(err, &serr) {
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
	}

	status := http.StatusInternalServerError
	switch serr.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	default:
		return status, errorResponse{Error: "Internal server error"}
	}
	return status, errorResponse{Error: serr.Message, Details: serr.Details}
}
