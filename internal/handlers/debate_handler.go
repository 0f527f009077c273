package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dev.supermcp.debate/internal/debate"
	"dev.supermcp.debate/internal/roles"
)

// DebateHandler handles debate API endpoints
type DebateHandler struct {
	engine   *debate.Engine
	roleOrch *roles.Orchestrator
}

// NewDebateHandler creates a new debate handler
func NewDebateHandler(engine *debate.Engine, roleOrch *roles.Orchestrator) *DebateHandler {
	return &DebateHandler{engine: engine, roleOrch: roleOrch}
}

// RegisterRoutes registers the debate routes
func (h *DebateHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/debate")
	{
		group.POST("", h.ConductDebate)
		group.GET("/analytics", h.GetAnalytics)
	}
}

// DebateRequest is the request body for starting a debate
type DebateRequest struct {
	Content string            `json:"content" binding:"required"`
	Domain  string            `json:"domain" binding:"required"`
	Context map[string]string `json:"context"`
}

// ConductDebate runs a full multi-round debate
// @Summary Conduct a multi-model debate
// @Description Assigns roles by context and runs a structured debate to consensus
// @Tags debate
// @Accept json
// @Produce json
// @Success 200 {object} models.DebateResult
// @Failure 400 {object} map[string]string
// @Router /v1/debate [post]
func (h *DebateHandler) ConductDebate(c *gin.Context) {
	var req DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments := h.roleOrch.AssignRolesByContext(req.Content, req.Domain, req.Context)
	result, err := h.engine.ConductDebate(c.Request.Context(), req.Content, req.Domain, assignments, req.Context)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      result,
		"assignments": assignments,
	})
}

// GetAnalytics returns aggregate debate analytics
// @Summary Get debate analytics
// @Tags debate
// @Produce json
// @Success 200 {object} debate.Analytics
// @Router /v1/debate/analytics [get]
func (h *DebateHandler) GetAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.DebateAnalytics())
}
