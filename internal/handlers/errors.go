package handlers

import (
	"errors"
	"fmt"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/services"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// respondError maps service errors onto HTTP responses.
// Unclassified errors are logged, reported to Sentry and hidden from the client.
func respondError(c *gin.Context, err error) {
	var (
		verr    *services.ValidationError
		authErr *services.AuthorizationError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verr.Fields})
	case errors.Is(err, services.ErrIdentityMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "identity_mismatch"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{
			"error":          err.Error(),
			"code":           "unauthorized",
			"expected_role":  authErr.Role,
			"expected_email": authErr.Email,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "already_finalized"})
	case errors.Is(err, services.ErrConfiguration):
		logger.Error(fmt.Sprintf("[HTTP] configuration error on %s %s: %v", c.Request.Method, c.FullPath(), err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "configuration_error"})
	default:
		logger.Error(fmt.Sprintf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
