package utils

import (
	"errors"
	"net/http"

	"marketplace/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   string(apperror.KindInternal),
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, kind apperror.Kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: string(kind), Message: message})
}

// RespondError maps a service error to its HTTP status. Internal failures
// are logged and their details withheld from the client.
func RespondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		JSONError(c, status, apperror.KindInternal, "Internal Server Error")
		return
	}

	msg := err.Error()
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	GetLogger().Debug("request rejected", zap.String("path", c.FullPath()), zap.String("kind", string(kind)), zap.Error(err))
	JSONError(c, status, kind, msg)
}
