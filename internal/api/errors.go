package api

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"

	"jobmetrics/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error code to an HTTP status
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeWorkbookInvalid,
		errors.CodeHeaderNotFound, errors.CodeSheetNotFound:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	writeError(c, statusFor(err), err)
}

func writeError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	code := errors.GetCode(err)
	if !errors.IsAppError(err) {
		code = errors.CodeInternalError
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
