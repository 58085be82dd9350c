package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// fail records err for ErrorHandler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error attached to the context. The wrapped
// cause is only exposed outside production.
func ErrorHandler(production bool, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}
		status := apperror.HTTPStatus(appErr.Kind)

		body := Envelope{Success: false, Message: appErr.Message, Errors: appErr.Details}
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				logger.Field{Key: "method", Value: c.Request.Method},
				logger.Field{Key: "path", Value: c.Request.URL.Path},
				logger.Field{Key: "error", Value: err},
			)
			if production {
				body.Message = "Internal server error"
			}
		}
		if body.Message == "" {
			body.Message = http.StatusText(status)
		}
		if !production && appErr.Err != nil {
			body.Detail = appErr.Err.Error()
		}
		c.JSON(status, body)
	}
}
