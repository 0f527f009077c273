package models

import "time"

// ReplayStatus is the lifecycle state of a decision replay.
type ReplayStatus string

const (
	ReplayPending    ReplayStatus = "pending"
	ReplayInProgress ReplayStatus = "in_progress"
	ReplayCompleted  ReplayStatus = "completed"
	ReplayFailed     ReplayStatus = "failed"
)

// ImprovementType tags a detected improvement dimension.
type ImprovementType string

const (
	ImprovementQuality     ImprovementType = "quality_improvement"
	ImprovementEfficiency  ImprovementType = "efficiency_improvement"
	ImprovementConsistency ImprovementType = "consistency_improvement"
	ImprovementCost        ImprovementType = "cost_reduction"
	ImprovementSpeed       ImprovementType = "speed_improvement"
)

// SystemConfig is a snapshot of the configuration a decision ran under, kept on
// every replay for traceability.
type SystemConfig struct {
	Version              string     `json:"version"`
	Providers            []Provider `json:"providers"`
	ConsensusThreshold   float64    `json:"consensus_threshold"`
	MaxRounds            int        `json:"max_rounds"`
	MinimumQuality       float64    `json:"minimum_quality"`
	HumanReviewThreshold float64    `json:"human_review_threshold"`
	Features             []string   `json:"features"`
}

// OriginalDecision holds the recorded input and outcome of a historical task.
type OriginalDecision struct {
	TaskID    string        `json:"task_id"`
	Timestamp time.Time     `json:"timestamp"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Cost      float64       `json:"cost"`
	Duration  time.Duration `json:"duration"`
	Config    SystemConfig  `json:"config"`
}

// DifferenceAnalysis describes how the replay output differs from the original.
type DifferenceAnalysis struct {
	LengthDelta           int      `json:"length_delta"`
	StructureImprovements []string `json:"structure_improvements"`
	ContentAdditions      []string `json:"content_additions"`
	QualityNotes          []string `json:"quality_notes"`
	QualityComparison     string   `json:"quality_comparison"`
}

// DecisionReplay records one re-execution of a historical decision under the
// current configuration. It is mutated during execution and immutable once the
// status reaches completed or failed.
type DecisionReplay struct {
	ReplayID          string             `json:"replay_id"`
	OriginalTaskID    string             `json:"original_task_id"`
	OriginalTimestamp time.Time          `json:"original_timestamp"`
	ReplayTimestamp   time.Time          `json:"replay_timestamp"`
	OriginalInput     string             `json:"original_input"`
	OriginalOutput    string             `json:"original_output"`
	OriginalCost      float64            `json:"original_cost"`
	OriginalDuration  time.Duration      `json:"original_duration"`
	ReplayOutput      string             `json:"replay_output"`
	ReplayCost        float64            `json:"replay_cost"`
	ReplayDuration    time.Duration      `json:"replay_duration"`
	ImprovementScore  float64            `json:"improvement_score"`
	ImprovementTypes  []ImprovementType  `json:"improvement_types"`
	Differences       DifferenceAnalysis `json:"differences"`
	ConfigOriginal    SystemConfig       `json:"config_original"`
	ConfigCurrent     SystemConfig       `json:"config_current"`
	Status            ReplayStatus       `json:"status"`
	Error             string             `json:"error,omitempty"`
}

// ImprovementMetrics is a derived aggregate over the replay history. It is
// never persisted independently, always recomputed.
type ImprovementMetrics struct {
	TotalReplays          int       `json:"total_replays"`
	ImprovedDecisions     int       `json:"improved_decisions"`
	ImprovementRate       float64   `json:"improvement_rate"`
	AvgQualityImprovement float64   `json:"avg_quality_improvement"`
	AvgCostReduction      float64   `json:"avg_cost_reduction"`
	AvgSpeedImprovement   float64   `json:"avg_speed_improvement"`
	TotalROIImpact        float64   `json:"total_roi_impact"`
	ConfidenceLevel       float64   `json:"confidence_level"`
	LastUpdated           time.Time `json:"last_updated"`
}

// SystemEvolution summarizes replay-derived improvement over a time period.
type SystemEvolution struct {
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	DecisionsAnalyzed   int       `json:"decisions_analyzed"`
	AvgImprovementScore float64   `json:"avg_improvement_score"`
	KeyImprovements     []string  `json:"key_improvements"`
	RegressionAreas     []string  `json:"regression_areas"`
	Trend               string    `json:"trend"` // "improving", "stable", "declining"
}
