package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/middleware"
	"github.com/sjperalta/workpermit-api/internal/services"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

type AdminHandler struct {
	admin    *services.AdminService
	export   *services.ExportService
	approval *services.ApprovalService
}

func NewAdminHandler(admin *services.AdminService, export *services.ExportService, approval *services.ApprovalService) *AdminHandler {
	return &AdminHandler{admin: admin, export: export, approval: approval}
}

// Dashboard returns recent applications, decisions and notification attempts
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Export downloads every application as an XLSX workbook, or CSV with ?format=csv
func (h *AdminHandler) Export(c *gin.Context) {
	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		data, filename, err = h.export.ExportXLSX(c.Request.Context())
		contentType = contentTypeXLSX
	case "csv":
		data, filename, err = h.export.ExportCSV(c.Request.Context())
		contentType = contentTypeCSV
	default:
		badRequest(c, "format must be xlsx or csv")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Delete removes an application together with its decision log
func (h *AdminHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.approval.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logger.Info(fmt.Sprintf("[Admin] %s deleted application %s", middleware.GetUserEmail(c), id))
	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}
