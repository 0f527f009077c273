package replay

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.supermcp.debate/internal/models"
)

func seededEngine(t *testing.T, replays ...*models.DecisionReplay) *Engine {
	t.Helper()
	e := newTestEngine(&stubDebater{}, nil)
	for _, r := range replays {
		e.appendHistory(r)
	}
	return e
}

func completedReplay(id string, score float64, at time.Time) *models.DecisionReplay {
	return &models.DecisionReplay{
		ReplayID:         id,
		OriginalTaskID:   "task_" + id,
		ReplayTimestamp:  at,
		OriginalCost:     0.10,
		ReplayCost:       0.08,
		OriginalDuration: 40 * time.Second,
		ReplayDuration:   30 * time.Second,
		ImprovementScore: score,
		ImprovementTypes: []models.ImprovementType{models.ImprovementQuality},
		Status:           models.ReplayCompleted,
	}
}

// TestImprovementAnalytics_Empty tests the zero-history aggregate
func TestImprovementAnalytics_Empty(t *testing.T) {
	e := seededEngine(t)
	metrics := e.ImprovementAnalytics()
	assert.Zero(t, metrics.TotalReplays)
	assert.Zero(t, metrics.ImprovementRate)
}

// TestImprovementAnalytics_Aggregates tests the running aggregate computation
func TestImprovementAnalytics_Aggregates(t *testing.T) {
	now := time.Now()
	e := seededEngine(t,
		completedReplay("a", 0.3, now),
		completedReplay("b", 0.05, now),
		completedReplay("c", 0.5, now),
	)

	metrics := e.ImprovementAnalytics()
	assert.Equal(t, 3, metrics.TotalReplays)
	assert.Equal(t, 2, metrics.ImprovedDecisions, "scores above 0.1 count as improved")
	assert.InDelta(t, 2.0/3.0*100, metrics.ImprovementRate, 1e-9)
	assert.InDelta(t, (0.3+0.05+0.5)/3, metrics.AvgQualityImprovement, 1e-9)
	assert.InDelta(t, 0.2, metrics.AvgCostReduction, 1e-9)
	assert.InDelta(t, 0.25, metrics.AvgSpeedImprovement, 1e-9)
	assert.InDelta(t, 6.0, metrics.ConfidenceLevel, 1e-9, "confidence grows with sample size")
	assert.Greater(t, metrics.TotalROIImpact, 0.0)
}

// TestDecisionROI tests the per-replay nominal value conversion
func TestDecisionROI(t *testing.T) {
	r := &models.DecisionReplay{
		ImprovementScore: 0.4,
		OriginalCost:     0.05,
		ReplayCost:       0.03,
		OriginalDuration: 45 * time.Second,
		ReplayDuration:   38 * time.Second,
	}
	// 0.4*50 + 0.02*100 + 7*0.5
	assert.InDelta(t, 20+2+3.5, decisionROI(r), 1e-9)
}

// TestRecentImprovements_OrderAndLimit tests the feed ordering
func TestRecentImprovements_OrderAndLimit(t *testing.T) {
	now := time.Now()
	e := seededEngine(t,
		completedReplay("old", 0.2, now.Add(-3*time.Hour)),
		completedReplay("new", 0.3, now),
		completedReplay("mid", 0.25, now.Add(-time.Hour)),
		&models.DecisionReplay{ReplayID: "failed", ReplayTimestamp: now, Status: models.ReplayFailed},
	)

	recent := e.RecentImprovements(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].ReplayID)
	assert.Equal(t, "mid", recent[1].ReplayID)
}

// TestCalculateROIMetrics tests the annualized projection
func TestCalculateROIMetrics(t *testing.T) {
	e := seededEngine(t)
	assert.Zero(t, e.CalculateROIMetrics().CurrentROI)

	now := time.Now()
	e = seededEngine(t, completedReplay("a", 0.4, now), completedReplay("b", 0.2, now))

	roi := e.CalculateROIMetrics()
	assert.Greater(t, roi.CurrentROI, 0.0)
	assert.InDelta(t, roi.CurrentROI/2, roi.AvgROIPerDecision, 1e-9)
	assert.InDelta(t, roi.AvgROIPerDecision*100, roi.ProjectedAnnualROI, 1e-9, "2 replays scale to 100 annual decisions")
	assert.NotEmpty(t, roi.BusinessJustification)
	assert.Len(t, roi.KeyValueDrivers, 3)
}

// TestGetQualityTrends tests weekly bucketing and trend classification
func TestGetQualityTrends(t *testing.T) {
	e := seededEngine(t, completedReplay("a", 0.2, time.Now()))
	assert.Equal(t, "insufficient_data", e.GetQualityTrends().TrendDirection)

	// Six weeks of steadily rising scores.
	now := time.Now()
	var replays []*models.DecisionReplay
	for i := 0; i < 6; i++ {
		at := now.Add(-time.Duration(5-i) * 7 * 24 * time.Hour)
		replays = append(replays, completedReplay(fmt.Sprintf("w%d", i), 0.1+float64(i)*0.05, at))
	}
	e = seededEngine(t, replays...)

	trends := e.GetQualityTrends()
	assert.Equal(t, "improving", trends.TrendDirection)
	assert.Len(t, trends.Weeks, 6)
	assert.InDelta(t, 0.35, trends.CurrentPeriodAvg, 1e-9)
	assert.NotEmpty(t, trends.BestPeriod)
	assert.Greater(t, trends.ImprovementConsistency, 0.0)
}

// TestEvolution tests the trailing-period improvement summary
func TestEvolution(t *testing.T) {
	now := time.Now()
	e := seededEngine(t,
		completedReplay("a", 0.3, now.Add(-2*24*time.Hour)),
		completedReplay("b", 0.2, now.Add(-24*time.Hour)),
		completedReplay("ancient", 0.9, now.Add(-90*24*time.Hour)),
	)

	period := models.SystemEvolution{PeriodStart: now.AddDate(0, 0, -30), PeriodEnd: now}
	summary := e.Evolution(period)

	assert.Equal(t, 2, summary.DecisionsAnalyzed, "replays outside the window are excluded")
	assert.InDelta(t, 0.25, summary.AvgImprovementScore, 1e-9)
	assert.Equal(t, "improving", summary.Trend)
	assert.Contains(t, summary.KeyImprovements, string(models.ImprovementQuality))

	empty := e.Evolution(models.SystemEvolution{PeriodStart: now.AddDate(-2, 0, 0), PeriodEnd: now.AddDate(-1, 0, 0)})
	assert.Zero(t, empty.DecisionsAnalyzed)
	assert.Equal(t, "stable", empty.Trend)
}

// TestSystemUpgrades tests the config diff summary
func TestSystemUpgrades(t *testing.T) {
	original := models.SystemConfig{
		Version:            "1.0",
		Providers:          []models.Provider{models.ProviderGPT4, models.ProviderClaude},
		ConsensusThreshold: 0.6,
		Features:           []string{"decision_replay"},
	}
	current := models.SystemConfig{
		Version:            "2.0",
		Providers:          models.AllProviders(),
		ConsensusThreshold: 0.95,
		Features:           []string{"decision_replay", "dynamic_roles", "model_resilience"},
	}

	upgrades := SystemUpgrades(original, current)
	assert.NotEmpty(t, upgrades)

	joined := fmt.Sprint(upgrades)
	assert.Contains(t, joined, "new AI models")
	assert.Contains(t, joined, "gemini-pro")
	assert.Contains(t, joined, "quality standards")
	assert.Contains(t, joined, "dynamic_roles")
	assert.Contains(t, joined, "v1.0 -> v2.0")

	assert.Empty(t, SystemUpgrades(current, current))
}
