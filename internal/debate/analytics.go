package debate

import (
	"errors"
	"time"

	"dev.supermcp.debate/internal/models"
)

var (
	errEmptyContent  = errors.New("debate content must not be empty")
	errNoAssignments = errors.New("at least one role assignment is required")
)

// Analytics summarizes the engine's debate history.
type Analytics struct {
	TotalDebates             int           `json:"total_debates"`
	AverageConsensusScore    float64       `json:"average_consensus_score"`
	ConsensusAchievementRate float64       `json:"consensus_achievement_rate"`
	HumanInterventionRate    float64       `json:"human_intervention_rate"`
	AverageCostPerDebate     float64       `json:"average_cost_per_debate"`
	AverageDuration          time.Duration `json:"average_duration"`
	CostEfficiency           float64       `json:"cost_efficiency"`
	DomainsAnalyzed          []string      `json:"domains_analyzed"`
}

// DebateAnalytics aggregates all completed debates. Zero debates yield a
// zero-valued summary.
func (e *Engine) DebateAnalytics() Analytics {
	e.historyMu.Lock()
	history := make([]*models.DebateResult, len(e.history))
	copy(history, e.history)
	e.historyMu.Unlock()

	if len(history) == 0 {
		return Analytics{}
	}

	var consensusSum, costSum float64
	var durationSum time.Duration
	var achieved, interventions int
	domains := make(map[string]struct{})

	for _, d := range history {
		consensusSum += d.ConsensusScore
		costSum += d.TotalCost
		durationSum += d.TotalDuration
		if d.ConsensusScore >= e.cfg.ConsensusThreshold {
			achieved++
		}
		if d.HumanReviewRequired {
			interventions++
		}
		domains[d.Domain] = struct{}{}
	}

	total := float64(len(history))
	avgCost := costSum / total
	avgConsensus := consensusSum / total

	efficiency := 0.0
	if avgCost > 0 {
		efficiency = avgConsensus / avgCost
	}

	domainList := make([]string, 0, len(domains))
	for d := range domains {
		domainList = append(domainList, d)
	}

	return Analytics{
		TotalDebates:             len(history),
		AverageConsensusScore:    avgConsensus,
		ConsensusAchievementRate: float64(achieved) / total * 100,
		HumanInterventionRate:    float64(interventions) / total * 100,
		AverageCostPerDebate:     avgCost,
		AverageDuration:          durationSum / time.Duration(len(history)),
		CostEfficiency:           efficiency,
		DomainsAnalyzed:          domainList,
	}
}
