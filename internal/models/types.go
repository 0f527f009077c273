package models

import "time"

// ModelCall is an immutable record of one attempt against a provider. Calls are
// kept in a bounded per-provider ring buffer for health computation.
type ModelCall struct {
	Provider  Provider      `json:"provider"`
	Timestamp time.Time     `json:"timestamp"`
	Success   bool          `json:"success"`
	Latency   time.Duration `json:"latency"`
	Tokens    int           `json:"tokens"`
	Cost      float64       `json:"cost"`
	Error     string        `json:"error,omitempty"`
}

// ModelHealth is the derived health view of one provider, recomputed after
// every call and on the periodic health check.
type ModelHealth struct {
	Provider    Provider      `json:"provider"`
	Status      HealthStatus  `json:"status"`
	SuccessRate float64       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
	LastError   string        `json:"last_error,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	TotalCalls  int           `json:"total_calls"`
	FailedCalls int           `json:"failed_calls"`
}

// ModelResult is the normalized outcome of a resilient model call. IsFallback
// marks results served by the fallback chain or the emergency path; their
// confidence is capped below a primary-path response to signal degradation.
type ModelResult struct {
	Content        string        `json:"content"`
	Provider       Provider      `json:"provider"`
	Confidence     float64       `json:"confidence"`
	Tokens         int           `json:"tokens"`
	Cost           float64       `json:"cost"`
	Latency        time.Duration `json:"latency"`
	IsFallback     bool          `json:"is_fallback"`
	FallbackReason string        `json:"fallback_reason,omitempty"`
}

// ModelResponse is one provider's contribution to a debate round.
type ModelResponse struct {
	Provider   Provider      `json:"provider"`
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Tokens     int           `json:"tokens"`
	Latency    time.Duration `json:"latency"`
	Cost       float64       `json:"cost"`
	IsFallback bool          `json:"is_fallback"`
}
