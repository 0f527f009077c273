package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/replay"
)

// ReplayHandler handles decision replay and improvement analytics endpoints
type ReplayHandler struct {
	engine *replay.Engine
}

// NewReplayHandler creates a new replay handler
func NewReplayHandler(engine *replay.Engine) *ReplayHandler {
	return &ReplayHandler{engine: engine}
}

// RegisterRoutes registers the replay routes
func (h *ReplayHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/replay")
	{
		group.POST("/:task_id", h.ReplayDecision)
	}
	analytics := router.Group("/analytics")
	{
		analytics.GET("/improvements", h.GetImprovementAnalytics)
		analytics.GET("/recent", h.GetRecentImprovements)
		analytics.GET("/roi", h.GetROIMetrics)
		analytics.GET("/trends", h.GetQualityTrends)
		analytics.GET("/evolution", h.GetSystemEvolution)
	}
}

// ReplayRequest optionally supplies the original decision data inline and a
// force flag to bypass the recency window.
type ReplayRequest struct {
	OriginalData *models.OriginalDecision `json:"original_data"`
	ForceReplay  bool                     `json:"force_replay"`
}

// ReplayDecision re-executes a historical decision under the current configuration
// @Summary Replay a historical decision
// @Description Re-runs a past decision through the current debate pipeline and quantifies improvement
// @Tags replay
// @Accept json
// @Produce json
// @Param task_id path string true "Original task id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /v1/replay/{task_id} [post]
func (h *ReplayHandler) ReplayDecision(c *gin.Context) {
	taskID := c.Param("task_id")

	var req ReplayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	record, err := h.engine.ReplayDecision(c.Request.Context(), taskID, req.OriginalData, req.ForceReplay)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"replay":       record,
		"key_upgrades": replay.SystemUpgrades(record.ConfigOriginal, record.ConfigCurrent),
	})
}

// GetImprovementAnalytics returns aggregate improvement metrics
// @Summary Get improvement analytics
// @Tags replay
// @Produce json
// @Success 200 {object} models.ImprovementMetrics
// @Router /v1/analytics/improvements [get]
func (h *ReplayHandler) GetImprovementAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.ImprovementAnalytics())
}

// GetRecentImprovements returns the newest completed replays
// @Summary Get recent improvements
// @Tags replay
// @Produce json
// @Param limit query int false "Maximum entries" default(10)
// @Success 200 {array} replay.RecentImprovement
// @Router /v1/analytics/recent [get]
func (h *ReplayHandler) GetRecentImprovements(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	c.JSON(http.StatusOK, h.engine.RecentImprovements(limit))
}

// GetROIMetrics returns the executive ROI summary
// @Summary Get ROI metrics
// @Tags replay
// @Produce json
// @Success 200 {object} replay.ROIMetrics
// @Router /v1/analytics/roi [get]
func (h *ReplayHandler) GetROIMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CalculateROIMetrics())
}

// GetSystemEvolution summarizes replay-derived improvement over a trailing window
// @Summary Get system evolution summary
// @Tags replay
// @Produce json
// @Param days query int false "Trailing window in days" default(30)
// @Success 200 {object} models.SystemEvolution
// @Router /v1/analytics/evolution [get]
func (h *ReplayHandler) GetSystemEvolution(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}
	now := time.Now()
	period := models.SystemEvolution{
		PeriodStart: now.AddDate(0, 0, -days),
		PeriodEnd:   now,
	}
	c.JSON(http.StatusOK, h.engine.Evolution(period))
}

// GetQualityTrends returns weekly improvement trend buckets
// @Summary Get quality trends
// @Tags replay
// @Produce json
// @Success 200 {object} replay.QualityTrends
// @Router /v1/analytics/trends [get]
func (h *ReplayHandler) GetQualityTrends(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.GetQualityTrends())
}
