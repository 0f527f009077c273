package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/resilience"
)

// MonitoringHandler handles resilience monitoring API endpoints
type MonitoringHandler struct {
	orchestrator *resilience.Orchestrator
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(orchestrator *resilience.Orchestrator) *MonitoringHandler {
	return &MonitoringHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers the monitoring routes
func (h *MonitoringHandler) RegisterRoutes(router *gin.RouterGroup) {
	monitoring := router.Group("/monitoring")
	{
		monitoring.GET("/health", h.GetHealthStatus)
		monitoring.GET("/resilience", h.GetResilienceMetrics)
		monitoring.GET("/load-balancing", h.GetLoadBalancing)
		monitoring.POST("/circuit-breakers/:provider/reset", h.ResetCircuitBreaker)
	}
}

// GetHealthStatus returns per-provider health and circuit state
// @Summary Get provider health status
// @Tags monitoring
// @Produce json
// @Success 200 {object} resilience.HealthReport
// @Router /v1/monitoring/health [get]
func (h *MonitoringHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.HealthStatus())
}

// GetResilienceMetrics returns the aggregate resilience posture
// @Summary Get resilience metrics
// @Tags monitoring
// @Produce json
// @Success 200 {object} resilience.SystemMetrics
// @Router /v1/monitoring/resilience [get]
func (h *MonitoringHandler) GetResilienceMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.ResilienceMetrics())
}

// GetLoadBalancing returns the advisory traffic split across callable providers
// @Summary Get load balancing recommendation
// @Tags monitoring
// @Produce json
// @Success 200 {object} map[string]float64
// @Router /v1/monitoring/load-balancing [get]
func (h *MonitoringHandler) GetLoadBalancing(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.LoadBalancingRecommendation())
}

// ResetCircuitBreaker forces one provider's breaker back to closed
// @Summary Reset a circuit breaker
// @Tags monitoring
// @Produce json
// @Param provider path string true "Provider identifier"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /v1/monitoring/circuit-breakers/{provider}/reset [post]
func (h *MonitoringHandler) ResetCircuitBreaker(c *gin.Context) {
	provider, err := models.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.orchestrator.ResetCircuit(provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset", "provider": string(provider)})
}
