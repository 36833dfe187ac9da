package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error carries the HTTP status and client-facing detail for a failed request.
// Detail is rendered as-is, so it may be a string or a list of field errors.
type Error struct {
	Code   int
	Detail interface{}
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Detail, e.Err)
	}
	return fmt.Sprint(e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, detail interface{}, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

func NotFound(message string, err error) *Error {
	return New(http.StatusNotFound, message, err)
}

func BadRequest(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "Internal server error", err)
}

// ErrorMiddleware renders the last error attached with c.Error as
// {"detail": ...}. Errors that are not *Error become a 500 and are logged.
func ErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *Error
		if !errors.As(err, &appErr) {
			appErr = Internal(err)
		}
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		c.AbortWithStatusJSON(appErr.Code, gin.H{"detail": appErr.Detail})
	}
}
