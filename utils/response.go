package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// RespondError writes the envelope for err. Anything that is not an *AppError, or is an
// internal one, is logged and answered with a generic 500.
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.AbortWithStatusJSON(appErr.Status(), Envelope{
		Success: false,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
