package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/workpermit-api/internal/middleware"
	"github.com/sjperalta/workpermit-api/internal/roles"
)

// SessionHandler exposes the caller's identity and the applicant directory
type SessionHandler struct {
	resolver *roles.Resolver
}

func NewSessionHandler(resolver *roles.Resolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// Me returns the session email and its resolved capabilities
func (h *SessionHandler) Me(c *gin.Context) {
	r := middleware.GetRoles(c)
	c.JSON(http.StatusOK, gin.H{
		"email": middleware.GetUserEmail(c),
		"roles": gin.H{
			"can_submit":          r.CanSubmit(),
			"ehs_manager":         r.IsEHS(),
			"operations_manager":  r.IsOperationsManager(),
			"admin":               r.IsAdmin(),
			"area_supervisor_for": r.AreaSupervisorFor(),
		},
	})
}

// Applicants lists the configured applicant picker entries
func (h *SessionHandler) Applicants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"applicants": h.resolver.Applicants()})
}
