package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/database"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/services"
	"github.com/sjperalta/workpermit-api/pkg/logger"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	notifier *services.NotificationService
}

func NewHealthHandler(db *gorm.DB, notifier *services.NotificationService) *HealthHandler {
	return &HealthHandler{db: db, notifier: notifier}
}

// Index pings the database and reports the stored application count
func (h *HealthHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := database.Ping(ctx, h.db); err != nil {
		logger.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "unreachable"})
		return
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&models.Application{}).Count(&count).Error; err != nil {
		logger.Error("Health check count failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "schema unavailable"})
		return
	}

	resp := gin.H{
		"status":       "ok",
		"service":      "workpermit-api",
		"database":     "ok",
		"applications": count,
	}
	if h.notifier != nil {
		resp["mail_channel"] = h.notifier.Channel()
	}
	c.JSON(http.StatusOK, resp)
}
