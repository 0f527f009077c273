package debate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/roles"
)

// stubCaller satisfies Caller with scripted per-provider content.
type stubCaller struct {
	content map[models.Provider]string
	calls   atomic.Int64
	best    models.Provider
	hasBest bool
}

func (s *stubCaller) CallWithResilience(_ context.Context, provider models.Provider, prompt string, _ llm.Params) (*models.ModelResult, error) {
	s.calls.Add(1)
	content, ok := s.content[provider]
	if !ok {
		content = "generic position from " + string(provider)
	}
	return &models.ModelResult{
		Content:    content,
		Provider:   provider,
		Confidence: 0.85,
		Tokens:     100,
		Cost:       0.01,
		Latency:    5 * time.Millisecond,
	}, nil
}

func (s *stubCaller) BestAvailableProvider() (models.Provider, bool) {
	return s.best, s.hasBest
}

func testDebateConfig() config.DebateConfig {
	return config.DebateConfig{
		MaxRounds:          3,
		ConsensusThreshold: 0.95,
		RoundTimeout:       5 * time.Second,
	}
}

func testQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		LengthWeight:    0.3,
		StructureWeight: 0.2,
		ConsensusWeight: 0.5,
		TargetLength:    1500,
	}
}

func testAssignments() map[models.Provider]roles.Assignment {
	return map[models.Provider]roles.Assignment{
		models.ProviderGPT4:   {Provider: models.ProviderGPT4, Role: models.RoleCFOConservative, Confidence: 0.8},
		models.ProviderClaude: {Provider: models.ProviderClaude, Role: models.RoleCTOPragmatic, Confidence: 0.75},
		models.ProviderGemini: {Provider: models.ProviderGemini, Role: models.RoleCMOBrand, Confidence: 0.7},
	}
}

func newTestEngine(caller Caller) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEngine(caller, roles.NewOrchestrator(logger), testDebateConfig(), testQualityConfig(), logger)
}

// TestConductDebate_InputValidation tests the error cases
func TestConductDebate_InputValidation(t *testing.T) {
	e := newTestEngine(&stubCaller{})

	_, err := e.ConductDebate(context.Background(), "  ", "strategy", testAssignments(), nil)
	assert.Error(t, err)

	_, err = e.ConductDebate(context.Background(), "content", "strategy", nil, nil)
	assert.Error(t, err)
}

// TestConductDebate_EarlyConsensusExit tests that agreement skips further rounds
func TestConductDebate_EarlyConsensusExit(t *testing.T) {
	agreed := "We should proceed with a phased enterprise rollout backed by conservative budgeting"
	caller := &stubCaller{content: map[models.Provider]string{
		models.ProviderGPT4:   agreed,
		models.ProviderClaude: agreed,
		models.ProviderGemini: agreed,
	}}
	e := newTestEngine(caller)

	result, err := e.ConductDebate(context.Background(), "Should we launch?", "proposal", testAssignments(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RoundsConducted(), "identical positions should end after the opening round")
	assert.GreaterOrEqual(t, result.ConsensusScore, 0.95)
	assert.False(t, result.HumanReviewRequired)
	assert.Equal(t, int64(3), caller.calls.Load(), "one call per seat, no synthesis call")
	assert.True(t, strings.HasPrefix(result.TaskID, "debate_"))
}

// TestConductDebate_RunsToMaxRounds tests the round budget under disagreement
func TestConductDebate_RunsToMaxRounds(t *testing.T) {
	caller := &stubCaller{
		content: map[models.Provider]string{
			models.ProviderGPT4:   "alpha bravo charlie delta echo position one entirely",
			models.ProviderClaude: "foxtrot golf hotel india juliet stance two separate",
			models.ProviderGemini: "kilo lima mike november oscar view three unrelated",
		},
		best:    models.ProviderGPT4,
		hasBest: true,
	}
	e := newTestEngine(caller)

	result, err := e.ConductDebate(context.Background(), "Should we launch?", "proposal", testAssignments(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RoundsConducted())
	assert.Less(t, result.ConsensusScore, 0.95)
	assert.True(t, result.HumanReviewRequired)
	// Three seats across three rounds plus one final synthesis call.
	assert.Equal(t, int64(10), caller.calls.Load())
}

// TestConductDebate_UsageAggregation tests cost, token and usage accounting
func TestConductDebate_UsageAggregation(t *testing.T) {
	agreed := "Unanimous position stated identically by every participant in this debate"
	caller := &stubCaller{content: map[models.Provider]string{
		models.ProviderGPT4:   agreed,
		models.ProviderClaude: agreed,
		models.ProviderGemini: agreed,
	}}
	e := newTestEngine(caller)

	result, err := e.ConductDebate(context.Background(), "question", "strategy", testAssignments(), nil)
	require.NoError(t, err)

	assert.Equal(t, 300, result.TotalTokens)
	assert.InDelta(t, 0.03, result.TotalCost, 1e-9)
	assert.Len(t, result.ModelUsage, 3)

	usage := result.ModelUsage[models.ProviderGPT4]
	assert.Equal(t, models.RoleCFOConservative, usage.Role)
	assert.Equal(t, 1, usage.Rounds)
	assert.InDelta(t, 0.85, usage.AvgConfidence, 1e-9)
}

// TestConductDebate_NoBestProviderFallsBackToBestRound tests final synthesis degradation
func TestConductDebate_NoBestProviderFallsBackToBestRound(t *testing.T) {
	caller := &stubCaller{
		content: map[models.Provider]string{
			models.ProviderGPT4:   "alpha bravo charlie delta echo position one entirely",
			models.ProviderClaude: "foxtrot golf hotel india juliet stance two separate",
			models.ProviderGemini: "kilo lima mike november oscar view three unrelated",
		},
		hasBest: false,
	}
	e := newTestEngine(caller)

	result, err := e.ConductDebate(context.Background(), "question", "strategy", testAssignments(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.FinalResult)
	assert.Contains(t, result.FinalResult, "Multi-Model Analysis Summary")
}

// TestQualityScore tests the tunable quality heuristic
func TestQualityScore(t *testing.T) {
	e := newTestEngine(&stubCaller{})

	structured := "## Summary\n- point one\n1. step\n**bold**\n" + strings.Repeat("detail ", 250)
	high := e.qualityScore(structured, 0.9)
	low := e.qualityScore("short", 0.1)

	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, 1.0)
	assert.GreaterOrEqual(t, low, 0.0)
}

// TestDebateAnalytics tests history aggregation
func TestDebateAnalytics(t *testing.T) {
	agreed := "Unanimous position stated identically by every participant in this debate"
	caller := &stubCaller{content: map[models.Provider]string{
		models.ProviderGPT4:   agreed,
		models.ProviderClaude: agreed,
		models.ProviderGemini: agreed,
	}}
	e := newTestEngine(caller)

	assert.Zero(t, e.DebateAnalytics().TotalDebates)

	for i := 0; i < 3; i++ {
		_, err := e.ConductDebate(context.Background(), fmt.Sprintf("question %d", i), "strategy", testAssignments(), nil)
		require.NoError(t, err)
	}

	analytics := e.DebateAnalytics()
	assert.Equal(t, 3, analytics.TotalDebates)
	assert.InDelta(t, 100.0, analytics.ConsensusAchievementRate, 1e-9)
	assert.Zero(t, analytics.HumanInterventionRate)
	assert.Greater(t, analytics.AverageCostPerDebate, 0.0)
	assert.Equal(t, []string{"strategy"}, analytics.DomainsAnalyzed)
}
