package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/middleware"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/sjperalta/workpermit-api/internal/services"
)

const maxPerPage = 100

type ApplicationHandler struct {
	submission *services.SubmissionService
	approval   *services.ApprovalService
}

func NewApplicationHandler(submission *services.SubmissionService, approval *services.ApprovalService) *ApplicationHandler {
	return &ApplicationHandler{submission: submission, approval: approval}
}

// DecisionRequest is the body of the approve endpoint
type DecisionRequest struct {
	ApproverEmail   string `json:"approver_email"`
	Action          string `json:"action"`
	Comment         string `json:"comment"`
	FireWatcherName string `json:"fire_watcher_name"`
}

// Create submits a new work permit request
func (h *ApplicationHandler) Create(c *gin.Context) {
	var input services.CreateApplicationInput
	if err := BindNestedOrFlat(c, "application", &input); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	app, err := h.submission.Create(c.Request.Context(), middleware.GetUserEmail(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": app.ToResponse()})
}

// Index lists applications. Callers without an approver role only see their own.
func (h *ApplicationHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > maxPerPage {
		query.PerPage = 20
	}
	query.Search = strings.TrimSpace(c.Query("search_term"))
	query.SortBy = c.Query("sort_by")
	if dir := c.Query("sort_dir"); dir == "asc" || dir == "desc" {
		query.SortDir = dir
	}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		query.Filters["status"] = status.String()
	}
	if dept := strings.TrimSpace(c.Query("department")); dept != "" {
		query.Filters["department"] = dept
	}

	r := middleware.GetRoles(c)
	if isReviewer(r) {
		if email := c.Query("applicant_email"); email != "" {
			query.Filters["applicant_email"] = email
		}
	} else {
		query.Filters["applicant_email"] = middleware.GetUserEmail(c)
	}

	apps, total, err := h.approval.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, apps[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// Show returns one application with its display-sorted decision log
func (h *ApplicationHandler) Show(c *gin.Context) {
	app, err := h.approval.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app.ToResponse()})
}

// Approve records an approve or reject decision for the signed-in approver
func (h *ApplicationHandler) Approve(c *gin.Context) {
	var req DecisionRequest
	if err := BindNestedOrFlat(c, "decision", &req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.approval.Submit(c.Request.Context(), services.Decision{
		ApplicationID:   c.Param("id"),
		ApproverEmail:   req.ApproverEmail,
		SessionEmail:    middleware.GetUserEmail(c),
		Action:          models.Action(strings.ToLower(strings.TrimSpace(req.Action))),
		Comment:         req.Comment,
		FireWatcherName: req.FireWatcherName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": result.Application.ToResponse(),
		"log":         result.Log.ToResponse(),
	})
}

func isReviewer(r roles.Roles) bool {
	return r.IsAdmin() || r.IsEHS() || r.IsOperationsManager() || len(r.AreaSupervisorFor()) > 0
}
