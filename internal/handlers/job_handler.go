package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns notification worker counters
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"worker": h.jobService.GetStatus()})
}
