package ginserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"venuebook/internal/domain/shared/apperr"
)

func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Violations) > 0 {
		body["violations"] = appErr.Violations
	}
	c.JSON(statusFor(appErr.Kind), body)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
