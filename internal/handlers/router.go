package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/sjperalta/workpermit-api/docs" // Swagger docs
	"github.com/sjperalta/workpermit-api/internal/middleware"
	"github.com/sjperalta/workpermit-api/internal/roles"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the API under /api/v1
func RegisterRoutes(router *gin.Engine, h *Handlers, jwtSecret string, resolver *roles.Resolver) {
	v1 := router.Group("/api/v1")

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (public)
	v1.GET("/health", h.Health.Index)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret, resolver))
	{
		protected.GET("/me", h.Session.Me)
		protected.GET("/applicants", h.Session.Applicants)

		protected.POST("/applications", h.Application.Create)
		protected.GET("/applications", h.Application.Index)
		protected.GET("/applications/:id", h.Application.Show)
		protected.POST("/applications/:id/approve", h.Application.Approve)

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/admin/dashboard", h.Admin.Dashboard)
			admin.GET("/admin/export", h.Admin.Export)
			admin.DELETE("/admin/applications/:id", h.Admin.Delete)
			admin.GET("/jobs/status", h.Job.Status)
		}
	}
}
