package models

import "fmt"

// Provider identifies a model backend. The order of AllProviders defines the
// default fallback priority.
type Provider string

const (
	ProviderGPT4        Provider = "gpt-4"
	ProviderClaude      Provider = "claude-3-sonnet"
	ProviderGemini      Provider = "gemini-pro"
	ProviderLocalBackup Provider = "local-llama"
)

// AllProviders returns every known provider in default fallback priority order.
func AllProviders() []Provider {
	return []Provider{ProviderGPT4, ProviderClaude, ProviderGemini, ProviderLocalBackup}
}

// ParseProvider validates a provider identifier.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGPT4, ProviderClaude, ProviderGemini, ProviderLocalBackup:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider: %q", s)
}

// CircuitState represents the state of a provider's circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"    // Normal operation
	CircuitOpen     CircuitState = "open"      // Failing, rejecting requests
	CircuitHalfOpen CircuitState = "half_open" // Testing with limited requests
)

// HealthStatus classifies a provider's rolling health.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)
