package replay

import (
	"fmt"
	"sort"
	"time"

	"dev.supermcp.debate/internal/models"
)

// ImprovementAnalytics recomputes the aggregate improvement metrics over the
// full replay history.
func (e *Engine) ImprovementAnalytics() models.ImprovementMetrics {
	history := e.snapshotHistory()
	if len(history) == 0 {
		return models.ImprovementMetrics{LastUpdated: time.Now()}
	}

	total := len(history)
	improved := 0
	var scoreSum float64
	for _, r := range history {
		scoreSum += r.ImprovementScore
		if r.ImprovementScore > 0.1 {
			improved++
		}
	}

	confidence := float64(total) * 2
	if confidence > 95 {
		confidence = 95
	}

	return models.ImprovementMetrics{
		TotalReplays:          total,
		ImprovedDecisions:     improved,
		ImprovementRate:       float64(improved) / float64(total) * 100,
		AvgQualityImprovement: scoreSum / float64(total),
		AvgCostReduction:      e.avgCostReduction(history),
		AvgSpeedImprovement:   e.avgSpeedImprovement(history),
		TotalROIImpact:        e.totalROI(history),
		ConfidenceLevel:       confidence,
		LastUpdated:           time.Now(),
	}
}

func (e *Engine) avgCostReduction(history []*models.DecisionReplay) float64 {
	var sum float64
	var n int
	for _, r := range history {
		if r.OriginalCost > 0 {
			sum += maxFloat(0, (r.OriginalCost-r.ReplayCost)/r.OriginalCost)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Engine) avgSpeedImprovement(history []*models.DecisionReplay) float64 {
	var sum float64
	var n int
	for _, r := range history {
		if r.OriginalDuration > 0 {
			sum += maxFloat(0, float64(r.OriginalDuration-r.ReplayDuration)/float64(r.OriginalDuration))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Engine) totalROI(history []*models.DecisionReplay) float64 {
	var total float64
	for _, r := range history {
		total += decisionROI(r)
	}
	return total
}

// decisionROI converts one replay's gains into a nominal dollar figure:
// quality points at $50 each, realized cost savings with a projection
// multiplier, and $0.50 per second saved.
func decisionROI(r *models.DecisionReplay) float64 {
	qualityValue := r.ImprovementScore * 50
	costSavings := maxFloat(0, r.OriginalCost-r.ReplayCost) * 100
	timeSavings := maxFloat(0, (r.OriginalDuration - r.ReplayDuration).Seconds()) * 0.5
	return qualityValue + costSavings + timeSavings
}

// RecentImprovement is one line of the recent-improvements feed.
type RecentImprovement struct {
	ReplayID         string                   `json:"replay_id"`
	OriginalTaskID   string                   `json:"original_task_id"`
	ImprovementScore float64                  `json:"improvement_score"`
	ImprovementTypes []models.ImprovementType `json:"improvement_types"`
	ReplayDate       time.Time                `json:"replay_date"`
	KeyImprovements  []string                 `json:"key_improvements"`
}

// RecentImprovements returns the newest completed replays, most recent first.
func (e *Engine) RecentImprovements(limit int) []RecentImprovement {
	if limit <= 0 {
		limit = 10
	}
	history := e.snapshotHistory()

	completed := history[:0:0]
	for _, r := range history {
		if r.Status == models.ReplayCompleted {
			completed = append(completed, r)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].ReplayTimestamp.After(completed[j].ReplayTimestamp)
	})
	if len(completed) > limit {
		completed = completed[:limit]
	}

	out := make([]RecentImprovement, 0, len(completed))
	for _, r := range completed {
		out = append(out, RecentImprovement{
			ReplayID:         r.ReplayID,
			OriginalTaskID:   r.OriginalTaskID,
			ImprovementScore: r.ImprovementScore,
			ImprovementTypes: r.ImprovementTypes,
			ReplayDate:       r.ReplayTimestamp,
			KeyImprovements:  r.Differences.QualityNotes,
		})
	}
	return out
}

// ROIMetrics is the executive-facing return-on-investment summary.
type ROIMetrics struct {
	CurrentROI            float64  `json:"current_roi"`
	AvgROIPerDecision     float64  `json:"avg_roi_per_decision"`
	ProjectedAnnualROI    float64  `json:"projected_annual_roi"`
	ImprovementRate       float64  `json:"improvement_rate"`
	ConfidenceLevel       float64  `json:"confidence_level"`
	BusinessJustification string   `json:"business_justification"`
	KeyValueDrivers       []string `json:"key_value_drivers"`
}

// CalculateROIMetrics projects the replay history into an annualized ROI
// estimate.
func (e *Engine) CalculateROIMetrics() ROIMetrics {
	history := e.snapshotHistory()
	if len(history) == 0 {
		return ROIMetrics{}
	}

	metrics := e.ImprovementAnalytics()
	total := e.totalROI(history)
	avgPerDecision := total / float64(len(history))

	// Scale current volume to an estimated annual decision count.
	estimatedAnnualDecisions := float64(len(history)) * 50
	projected := avgPerDecision * estimatedAnnualDecisions

	return ROIMetrics{
		CurrentROI:            total,
		AvgROIPerDecision:     avgPerDecision,
		ProjectedAnnualROI:    projected,
		ImprovementRate:       metrics.ImprovementRate,
		ConfidenceLevel:       metrics.ConfidenceLevel,
		BusinessJustification: businessJustification(projected),
		KeyValueDrivers: []string{
			fmt.Sprintf("Quality improvements: +%.1f%%", metrics.AvgQualityImprovement*100),
			fmt.Sprintf("Cost reductions: -%.1f%%", metrics.AvgCostReduction*100),
			fmt.Sprintf("Speed improvements: +%.1f%%", metrics.AvgSpeedImprovement*100),
		},
	}
}

func businessJustification(projectedROI float64) string {
	switch {
	case projectedROI > 10000:
		return fmt.Sprintf("Strong ROI justification: $%.0f projected annual value through system improvements", projectedROI)
	case projectedROI > 5000:
		return fmt.Sprintf("Solid business case: $%.0f projected annual value from enhanced decision quality", projectedROI)
	case projectedROI > 1000:
		return fmt.Sprintf("Positive ROI demonstrated: $%.0f projected annual value from system evolution", projectedROI)
	default:
		return fmt.Sprintf("Early stage ROI: $%.0f projected value with significant upside potential", projectedROI)
	}
}

// QualityTrends buckets replay improvement scores by ISO week and classifies
// the overall direction.
type QualityTrends struct {
	TrendDirection         string             `json:"trend_direction"`
	Weeks                  []string           `json:"weeks"`
	AverageImprovements    []float64          `json:"average_improvements"`
	CurrentPeriodAvg       float64            `json:"current_period_avg"`
	BestPeriod             string             `json:"best_period,omitempty"`
	ImprovementConsistency float64            `json:"improvement_consistency"`
	WeeklyAverages         map[string]float64 `json:"weekly_averages"`
}

// GetQualityTrends requires at least five replays to produce a trend; fewer
// yield an insufficient_data direction.
func (e *Engine) GetQualityTrends() QualityTrends {
	history := e.snapshotHistory()
	if len(history) < 5 {
		return QualityTrends{TrendDirection: "insufficient_data"}
	}

	byWeek := make(map[string][]float64)
	for _, r := range history {
		year, week := r.ReplayTimestamp.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		byWeek[key] = append(byWeek[key], r.ImprovementScore)
	}

	weeks := make([]string, 0, len(byWeek))
	averages := make(map[string]float64, len(byWeek))
	for week, scores := range byWeek {
		weeks = append(weeks, week)
		var sum float64
		for _, s := range scores {
			sum += s
		}
		averages[week] = sum / float64(len(scores))
	}
	sort.Strings(weeks)

	trendData := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		trendData = append(trendData, averages[w])
	}

	direction := "insufficient_data"
	if len(trendData) >= 3 {
		recentAvg := (trendData[len(trendData)-1] + trendData[len(trendData)-2] + trendData[len(trendData)-3]) / 3
		olderAvg := (trendData[0] + trendData[1] + trendData[2]) / 3
		switch {
		case recentAvg > olderAvg:
			direction = "improving"
		case recentAvg < olderAvg:
			direction = "declining"
		default:
			direction = "stable"
		}
	}

	bestPeriod := ""
	bestScore := -1.0
	for week, avg := range averages {
		if avg > bestScore {
			bestPeriod, bestScore = week, avg
		}
	}

	consistent := 0
	for _, s := range trendData {
		if s > 0.1 {
			consistent++
		}
	}

	return QualityTrends{
		TrendDirection:         direction,
		Weeks:                  weeks,
		AverageImprovements:    trendData,
		CurrentPeriodAvg:       trendData[len(trendData)-1],
		BestPeriod:             bestPeriod,
		ImprovementConsistency: float64(consistent) / float64(len(trendData)),
		WeeklyAverages:         averages,
	}
}
