package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/debate"
	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/replay"
	"dev.supermcp.debate/internal/resilience"
	"dev.supermcp.debate/internal/roles"
)

// echoProvider answers every prompt with fixed content.
type echoProvider struct {
	content string
}

func (p *echoProvider) Invoke(context.Context, string, llm.Params) (*llm.Result, error) {
	return &llm.Result{Content: p.content, Tokens: 100, Cost: 0.01, Confidence: 0.9}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Debate.RoundTimeout = 5 * time.Second
	return cfg
}

func buildRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger := testLogger()

	registry := llm.NewRegistry()
	agreed := "A unanimous structured position shared identically by every participant"
	for _, p := range models.AllProviders() {
		registry.Register(p, &echoProvider{content: agreed})
	}

	orchestrator := resilience.NewOrchestrator(registry, cfg.Resilience, logger, nil)
	t.Cleanup(orchestrator.Stop)

	roleOrch := roles.NewOrchestrator(logger)
	debateEngine := debate.NewEngine(orchestrator, roleOrch, cfg.Debate, cfg.Quality, logger)
	replayEngine := replay.NewEngine(debateEngine, roleOrch, replay.NewInMemoryStore(), nil, cfg.Replay, cfg.CurrentSystemConfig, logger)

	router := gin.New()
	v1 := router.Group("/v1")
	NewDebateHandler(debateEngine, roleOrch).RegisterRoutes(v1)
	NewReplayHandler(replayEngine).RegisterRoutes(v1)
	NewMonitoringHandler(orchestrator).RegisterRoutes(v1)
	return router
}

// TestDebateEndpoint tests a full debate round trip over HTTP
func TestDebateEndpoint(t *testing.T) {
	router := buildRouter(t)

	body, _ := json.Marshal(DebateRequest{
		Content: "Should we expand into the enterprise segment next quarter?",
		Domain:  "proposal",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/debate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result      models.DebateResult                  `json:"result"`
		Assignments map[models.Provider]roles.Assignment `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Result.TaskID)
	assert.NotEmpty(t, resp.Result.FinalResult)
	assert.Len(t, resp.Assignments, 3)
}

// TestDebateEndpoint_BadRequest tests request validation
func TestDebateEndpoint_BadRequest(t *testing.T) {
	router := buildRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/debate", bytes.NewReader([]byte(`{"domain":"proposal"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestReplayEndpoint tests replaying a seeded decision over HTTP
func TestReplayEndpoint(t *testing.T) {
	router := buildRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/replay/task_001", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Replay      models.DecisionReplay `json:"replay"`
		KeyUpgrades []string              `json:"key_upgrades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ReplayCompleted, resp.Replay.Status)
	assert.Equal(t, "task_001", resp.Replay.OriginalTaskID)
	assert.NotEmpty(t, resp.KeyUpgrades)
}

// TestReplayEndpoint_UnknownTask tests the failed-record response
func TestReplayEndpoint_UnknownTask(t *testing.T) {
	router := buildRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/replay/task_nope", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "failures surface inside the record")

	var resp struct {
		Replay models.DecisionReplay `json:"replay"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ReplayFailed, resp.Replay.Status)
	assert.NotEmpty(t, resp.Replay.Error)
}

// TestAnalyticsEndpoints tests the analytics surface returns valid JSON
func TestAnalyticsEndpoints(t *testing.T) {
	router := buildRouter(t)

	for _, path := range []string{
		"/v1/analytics/improvements",
		"/v1/analytics/recent",
		"/v1/analytics/roi",
		"/v1/analytics/trends",
		"/v1/analytics/evolution",
		"/v1/debate/analytics",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "GET %s", path)
		assert.True(t, json.Valid(w.Body.Bytes()), "GET %s must return JSON", path)
	}
}

// TestMonitoringEndpoints tests health and resilience reporting
func TestMonitoringEndpoints(t *testing.T) {
	router := buildRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/monitoring/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health resilience.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Len(t, health.Providers, 4)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/monitoring/resilience", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var metrics resilience.SystemMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.NotEmpty(t, metrics.Recommendations)
}

// TestResetCircuitBreakerEndpoint tests the manual reset route
func TestResetCircuitBreakerEndpoint(t *testing.T) {
	router := buildRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/monitoring/circuit-breakers/gpt-4/reset", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/monitoring/circuit-breakers/bogus/reset", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
