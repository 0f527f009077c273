package models

import "time"

// Role is a specialized perspective assigned to a provider for a debate.
type Role string

const (
	RoleCFOConservative   Role = "cfo_conservative"
	RoleCFOGrowth         Role = "cfo_growth"
	RoleCTOPragmatic      Role = "cto_pragmatic"
	RoleCTOInnovative     Role = "cto_innovative"
	RoleCMOBrand          Role = "cmo_brand"
	RoleCMOGrowth         Role = "cmo_growth"
	RoleLegalCompliance   Role = "legal_compliance"
	RoleLegalBusiness     Role = "legal_business"
	RoleStrategyExecution Role = "strategy_execution"
	RoleStrategyVision    Role = "strategy_vision"
)

// DebateRound captures one synchronized pass where every assigned provider
// produced (or failed to produce) a response.
type DebateRound struct {
	RoundNumber    int             `json:"round_number"`
	Topic          string          `json:"topic"`
	Responses      []ModelResponse `json:"responses"`
	ConsensusScore float64         `json:"consensus_score"`
	Synthesis      string          `json:"synthesis"`
	Duration       time.Duration   `json:"duration"`
}

// ModelUsage summarizes one provider's participation across a debate.
type ModelUsage struct {
	Role          Role    `json:"role"`
	Rounds        int     `json:"rounds"`
	TotalTokens   int     `json:"total_tokens"`
	TotalCost     float64 `json:"total_cost"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// DebateResult is the immutable outcome of one debate invocation.
type DebateResult struct {
	TaskID              string                  `json:"task_id"`
	Domain              string                  `json:"domain"`
	Rounds              []DebateRound           `json:"rounds"`
	FinalResult         string                  `json:"final_result"`
	ConsensusScore      float64                 `json:"consensus_score"`
	QualityScore        float64                 `json:"quality_score"`
	ModelUsage          map[Provider]ModelUsage `json:"model_usage"`
	TotalCost           float64                 `json:"total_cost"`
	TotalTokens         int                     `json:"total_tokens"`
	TotalDuration       time.Duration           `json:"total_duration"`
	HumanReviewRequired bool                    `json:"human_review_required"`
}

// RoundsConducted returns the number of rounds that actually ran.
func (r *DebateResult) RoundsConducted() int {
	return len(r.Rounds)
}
