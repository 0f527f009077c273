package resilience

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
)

const healthProbePrompt = "Health check - respond with OK"

// Orchestrator turns unreliable provider calls into a dependable call
// abstraction. CallWithResilience never fails for availability reasons: it
// degrades through the fallback chain and, as a last resort, synthesizes an
// emergency response.
type Orchestrator struct {
	registry *llm.Registry
	cfg      config.ResilienceConfig
	logger   *logrus.Logger
	metrics  *Metrics

	// states is built once at construction and never mutated; each entry
	// serializes its own provider's bookkeeping.
	states map[models.Provider]*providerState

	statsMu       sync.Mutex
	totalCalls    int64
	fallbackCalls int64

	stopOnce sync.Once
	started  bool
	stop     chan struct{}
	done     chan struct{}
}

// providerState is the guarded state cell for one provider, shared between the
// request path and the background health checker.
type providerState struct {
	mu      sync.Mutex
	breaker *CircuitBreaker
	history *callHistory
	health  models.ModelHealth
}

// NewOrchestrator creates an orchestrator over the registered providers.
// Metrics may be nil.
func NewOrchestrator(registry *llm.Registry, cfg config.ResilienceConfig, logger *logrus.Logger, metrics *Metrics) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	states := make(map[models.Provider]*providerState, len(models.AllProviders()))
	for _, p := range models.AllProviders() {
		states[p] = &providerState{
			breaker: NewCircuitBreaker(p, cfg.CircuitFor(p)),
			history: newCallHistory(cfg.HistorySize),
			health: models.ModelHealth{
				Provider:    p,
				Status:      models.HealthUnknown,
				LastChecked: time.Now(),
			},
		}
	}
	return &Orchestrator{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		states:   states,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// CallWithResilience calls the preferred provider, degrading through the
// fallback chain on unavailability or failure. It returns an error only for
// malformed input; availability problems always yield a usable result.
func (o *Orchestrator) CallWithResilience(ctx context.Context, provider models.Provider, prompt string, params llm.Params) (*models.ModelResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	ps, ok := o.states[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %q", provider)
	}

	o.statsMu.Lock()
	o.totalCalls++
	o.statsMu.Unlock()

	if err := ps.breaker.Allow(); err != nil {
		o.logger.WithField("provider", provider).Warn("Circuit breaker open, falling back")
		return o.executeFallbackChain(ctx, provider, prompt, params,
			fmt.Sprintf("circuit open for %s", provider)), nil
	}

	result, latency, err := o.execute(ctx, provider, prompt, params)
	if err != nil {
		o.recordFailure(provider, err.Error(), latency)
		o.logger.WithFields(logrus.Fields{
			"provider": provider,
			"error":    err.Error(),
		}).Error("Model call failed")
		return o.executeFallbackChain(ctx, provider, prompt, params,
			fmt.Sprintf("primary provider %s unavailable", provider)), nil
	}

	o.recordSuccess(provider, result, latency)
	return &models.ModelResult{
		Content:    result.Content,
		Provider:   provider,
		Confidence: result.Confidence,
		Tokens:     result.Tokens,
		Cost:       result.Cost,
		Latency:    latency,
	}, nil
}

// execute runs one bounded call against a single provider. A timeout, error,
// or empty completion all count as failures.
func (o *Orchestrator) execute(ctx context.Context, provider models.Provider, prompt string, params llm.Params) (*llm.Result, time.Duration, error) {
	backend, err := o.registry.Get(provider)
	if err != nil {
		return nil, 0, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CircuitFor(provider).RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := backend.Invoke(callCtx, prompt, params)
	latency := time.Since(start)

	if err != nil {
		return nil, latency, fmt.Errorf("calling %s: %w", provider, err)
	}
	if result == nil || strings.TrimSpace(result.Content) == "" {
		return nil, latency, fmt.Errorf("empty response from %s", provider)
	}
	return result, latency, nil
}

// executeFallbackChain walks the ordered fallback list and, when everything
// fails, synthesizes the emergency response.
func (o *Orchestrator) executeFallbackChain(ctx context.Context, failed models.Provider, prompt string, params llm.Params, reason string) *models.ModelResult {
	o.statsMu.Lock()
	o.fallbackCalls++
	o.statsMu.Unlock()
	o.metrics.observeFallback()

	order := o.fallbackOrder(failed)
	o.logger.WithFields(logrus.Fields{
		"failed_provider": failed,
		"chain":           order,
	}).Info("Executing fallback chain")

	for _, candidate := range order {
		ps := o.states[candidate]
		if err := ps.breaker.Allow(); err != nil {
			continue
		}
		result, latency, err := o.execute(ctx, candidate, prompt, params)
		if err != nil {
			o.recordFailure(candidate, err.Error(), latency)
			o.logger.WithFields(logrus.Fields{
				"provider": candidate,
				"error":    err.Error(),
			}).Warn("Fallback provider also failed")
			continue
		}
		o.recordSuccess(candidate, result, latency)
		o.logger.WithField("provider", candidate).Info("Fallback successful")
		return &models.ModelResult{
			Content:        result.Content,
			Provider:       candidate,
			Confidence:     result.Confidence * o.cfg.FallbackPenalty,
			Tokens:         result.Tokens,
			Cost:           result.Cost,
			Latency:        latency,
			IsFallback:     true,
			FallbackReason: reason,
		}
	}

	return o.emergencyResponse(prompt, reason)
}

// fallbackOrder builds the ordered candidate list: callable providers sorted
// healthy-first by descending success rate, degraded next, unhealthy and
// unknown as last resort, and the local backup always appended last.
func (o *Orchestrator) fallbackOrder(failed models.Provider) []models.Provider {
	type scored struct {
		provider models.Provider
		rate     float64
	}
	var healthy, degraded, lastResort []scored

	for _, p := range models.AllProviders() {
		if p == failed || p == models.ProviderLocalBackup {
			continue
		}
		ps := o.states[p]
		if !ps.breaker.Callable() {
			continue
		}
		ps.mu.Lock()
		status, rate := ps.health.Status, ps.health.SuccessRate
		ps.mu.Unlock()

		entry := scored{provider: p, rate: rate}
		switch status {
		case models.HealthHealthy:
			healthy = append(healthy, entry)
		case models.HealthDegraded:
			degraded = append(degraded, entry)
		default:
			lastResort = append(lastResort, entry)
		}
	}

	byRate := func(s []scored) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].rate > s[j].rate })
	}
	byRate(healthy)
	byRate(degraded)
	byRate(lastResort)

	order := make([]models.Provider, 0, len(healthy)+len(degraded)+len(lastResort)+1)
	for _, group := range [][]scored{healthy, degraded, lastResort} {
		for _, s := range group {
			order = append(order, s.provider)
		}
	}
	if failed != models.ProviderLocalBackup {
		order = append(order, models.ProviderLocalBackup)
	}
	return order
}

// emergencyResponse is returned when every provider in the chain failed. It is
// clearly flagged and deliberately low-confidence.
func (o *Orchestrator) emergencyResponse(prompt, reason string) *models.ModelResult {
	summary := prompt
	if len(summary) > 300 {
		summary = summary[:300] + "..."
	}
	content := fmt.Sprintf(`**[SYSTEM EMERGENCY RESPONSE]**

All AI models are currently experiencing issues. This is an automated emergency response.

**Original Request Summary:**
%s

**Emergency Recommendations:**
1. **Immediate Action Required:** This request requires human review
2. **System Status:** Primary AI models temporarily unavailable
3. **Escalation:** Please contact system administrators
4. **Retry:** Attempt request again in 5-10 minutes

**Note:** This response is automatically generated and should not be used for critical decisions.`, summary)

	o.logger.WithField("reason", reason).Error("All fallback providers failed - generating emergency response")

	return &models.ModelResult{
		Content:        content,
		Provider:       models.ProviderLocalBackup,
		Confidence:     o.cfg.EmergencyConfidence,
		Tokens:         len(strings.Fields(content)),
		IsFallback:     true,
		FallbackReason: "all providers failed - emergency response",
	}
}

func (o *Orchestrator) recordSuccess(provider models.Provider, result *llm.Result, latency time.Duration) {
	ps := o.states[provider]
	ps.breaker.RecordSuccess()
	o.metrics.observeCall(provider, true, latency.Seconds())
	o.metrics.observeCircuitState(provider, ps.breaker.State())

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.history.append(models.ModelCall{
		Provider:  provider,
		Timestamp: time.Now(),
		Success:   true,
		Latency:   latency,
		Tokens:    result.Tokens,
		Cost:      result.Cost,
	})
	o.updateHealthLocked(ps)
}

func (o *Orchestrator) recordFailure(provider models.Provider, errMsg string, latency time.Duration) {
	ps := o.states[provider]
	ps.breaker.RecordFailure()
	o.metrics.observeCall(provider, false, latency.Seconds())
	o.metrics.observeCircuitState(provider, ps.breaker.State())
	if ps.breaker.State() == models.CircuitOpen {
		o.logger.WithField("provider", provider).Warn("Circuit breaker opened")
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.history.append(models.ModelCall{
		Provider:  provider,
		Timestamp: time.Now(),
		Success:   false,
		Latency:   latency,
		Error:     errMsg,
	})
	o.updateHealthLocked(ps)
}

// updateHealthLocked recomputes the provider's derived health over the recent
// call window. The providerState lock must be held.
func (o *Orchestrator) updateHealthLocked(ps *providerState) {
	recent := ps.history.recent(o.cfg.HealthWindow, o.cfg.HealthSampleSize)
	ps.health.LastChecked = time.Now()

	all := ps.history.snapshot()
	ps.health.TotalCalls = len(all)
	failed := 0
	for _, c := range all {
		if !c.Success {
			failed++
		}
	}
	ps.health.FailedCalls = failed

	if len(recent) == 0 {
		ps.health.Status = models.HealthUnknown
		ps.health.SuccessRate = 0
		ps.health.AvgLatency = 0
		return
	}

	var successes int
	var latencySum time.Duration
	var lastError string
	for _, c := range recent {
		if c.Success {
			successes++
			latencySum += c.Latency
		} else {
			lastError = c.Error
		}
	}

	rate := float64(successes) / float64(len(recent))
	var avgLatency time.Duration
	if successes > 0 {
		avgLatency = latencySum / time.Duration(successes)
	}

	ps.health.SuccessRate = rate
	ps.health.AvgLatency = avgLatency
	ps.health.LastError = lastError

	switch {
	case rate >= 0.95 && avgLatency < 10*time.Second:
		ps.health.Status = models.HealthHealthy
	case rate >= 0.70 && avgLatency < 15*time.Second:
		ps.health.Status = models.HealthDegraded
	default:
		ps.health.Status = models.HealthUnhealthy
	}
}

// Health returns the current derived health of one provider.
func (o *Orchestrator) Health(provider models.Provider) (models.ModelHealth, error) {
	ps, ok := o.states[provider]
	if !ok {
		return models.ModelHealth{}, fmt.Errorf("unknown provider: %q", provider)
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.health, nil
}

// HealthReport aggregates per-provider health and circuit state.
type HealthReport struct {
	Providers           map[models.Provider]models.ModelHealth `json:"providers"`
	Circuits            map[models.Provider]CircuitStats       `json:"circuits"`
	HealthyProviders    int                                    `json:"healthy_providers"`
	CircuitBreakersOpen int                                    `json:"circuit_breakers_open"`
	UptimeStatus        string                                 `json:"uptime_status"`
}

// HealthStatus returns the health of all providers plus an overall summary.
func (o *Orchestrator) HealthStatus() HealthReport {
	report := HealthReport{
		Providers: make(map[models.Provider]models.ModelHealth, len(o.states)),
		Circuits:  make(map[models.Provider]CircuitStats, len(o.states)),
	}
	for p, ps := range o.states {
		ps.mu.Lock()
		report.Providers[p] = ps.health
		ps.mu.Unlock()
		stats := ps.breaker.Stats()
		report.Circuits[p] = stats
		if stats.State == models.CircuitOpen {
			report.CircuitBreakersOpen++
		}
		if report.Providers[p].Status == models.HealthHealthy {
			report.HealthyProviders++
		}
	}
	switch {
	case report.HealthyProviders >= 2:
		report.UptimeStatus = "operational"
	case report.HealthyProviders == 1:
		report.UptimeStatus = "degraded"
	default:
		report.UptimeStatus = "critical"
	}
	return report
}

// BestAvailableProvider picks the callable provider with the highest
// successRate / (1 + avgLatency) score. Providers with open circuits are never
// returned, regardless of historical performance.
func (o *Orchestrator) BestAvailableProvider() (models.Provider, bool) {
	var best models.Provider
	bestScore := -1.0
	found := false

	for _, p := range models.AllProviders() {
		ps := o.states[p]
		if !ps.breaker.Callable() {
			continue
		}
		ps.mu.Lock()
		score := ps.health.SuccessRate / (1 + ps.health.AvgLatency.Seconds())
		ps.mu.Unlock()
		if score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

// LoadBalancingRecommendation suggests a normalized traffic split across the
// callable remote providers. Advisory only; the local backup is excluded
// because it is a last resort, not a traffic target.
func (o *Orchestrator) LoadBalancingRecommendation() map[models.Provider]float64 {
	weights := make(map[models.Provider]float64)
	total := 0.0
	for _, p := range models.AllProviders() {
		if p == models.ProviderLocalBackup {
			continue
		}
		ps := o.states[p]
		if !ps.breaker.Callable() {
			continue
		}
		ps.mu.Lock()
		w := ps.health.SuccessRate * (1 / (1 + ps.health.AvgLatency.Seconds()))
		ps.mu.Unlock()
		if w > 0 {
			weights[p] = w
			total += w
		}
	}
	if total == 0 {
		return map[models.Provider]float64{}
	}
	for p, w := range weights {
		weights[p] = w / total
	}
	return weights
}

// SystemMetrics summarizes the orchestrator's resilience posture.
type SystemMetrics struct {
	TotalCalls         int64    `json:"total_calls_processed"`
	FallbackRate       float64  `json:"fallback_rate"`
	CircuitActivations int64    `json:"circuit_breaker_activations"`
	UptimePercentage   float64  `json:"system_uptime_percentage"`
	ResilienceScore    float64  `json:"resilience_score"`
	SLACompliance      bool     `json:"sla_compliance"`
	ProviderDiversity  int      `json:"provider_diversity"`
	RecoveryReadiness  string   `json:"recovery_readiness"`
	CostEfficiency     float64  `json:"cost_efficiency"`
	Recommendations    []string `json:"recommendations"`
}

// ResilienceMetrics computes the advisory resilience summary.
func (o *Orchestrator) ResilienceMetrics() SystemMetrics {
	o.statsMu.Lock()
	totalCalls, fallbackCalls := o.totalCalls, o.fallbackCalls
	o.statsMu.Unlock()

	var activations int64
	var openCircuits, halfOpenCircuits, healthy, callable int
	var successRateSum, latencySum float64
	var latencyCount int

	for _, p := range models.AllProviders() {
		ps := o.states[p]
		stats := ps.breaker.Stats()
		activations += stats.Activations
		switch stats.State {
		case models.CircuitOpen:
			openCircuits++
		case models.CircuitHalfOpen:
			halfOpenCircuits++
		}
		if ps.breaker.Callable() {
			callable++
		}
		ps.mu.Lock()
		if ps.health.Status == models.HealthHealthy {
			healthy++
		}
		successRateSum += ps.health.SuccessRate
		if ps.health.AvgLatency > 0 {
			latencySum += ps.health.AvgLatency.Seconds()
			latencyCount++
		}
		ps.mu.Unlock()
	}

	providerCount := len(models.AllProviders())
	uptime := float64(healthy) / float64(providerCount) * 100

	// Resilience score blends diversity, success rate, breaker churn and
	// latency consistency into a 0-100 figure.
	diversityScore := float64(callable) / float64(providerCount) * 25
	successScore := successRateSum / float64(providerCount) * 35
	cbScore := 20.0
	if totalCalls > 0 {
		cbScore = maxFloat(0, 20-float64(activations)/float64(totalCalls)*100)
	}
	latencyScore := 20.0
	if latencyCount > 0 {
		latencyScore = maxFloat(0, 20-latencySum/float64(latencyCount))
	}

	fallbackRate := 0.0
	if totalCalls > 0 {
		fallbackRate = float64(fallbackCalls) / float64(totalCalls) * 100
	}

	readiness := "excellent"
	switch {
	case openCircuits == 0:
		readiness = "excellent"
	case openCircuits <= 1 && halfOpenCircuits >= 1:
		readiness = "good"
	case openCircuits <= 2:
		readiness = "moderate"
	default:
		readiness = "critical"
	}

	costEfficiency := 100.0
	if totalCalls > 0 {
		costEfficiency = maxFloat(50, 100-(float64(fallbackCalls)/float64(totalCalls))*30)
	}

	return SystemMetrics{
		TotalCalls:         totalCalls,
		FallbackRate:       fallbackRate,
		CircuitActivations: activations,
		UptimePercentage:   uptime,
		ResilienceScore:    diversityScore + successScore + cbScore + latencyScore,
		SLACompliance:      uptime >= 99.0,
		ProviderDiversity:  callable,
		RecoveryReadiness:  readiness,
		CostEfficiency:     costEfficiency,
		Recommendations:    o.recommendations(openCircuits, fallbackRate, callable),
	}
}

func (o *Orchestrator) recommendations(openCircuits int, fallbackRate float64, callable int) []string {
	var recs []string
	if openCircuits > 0 {
		recs = append(recs, fmt.Sprintf("Address %d open circuit breaker(s)", openCircuits))
	}
	var unhealthy int
	for _, ps := range o.states {
		ps.mu.Lock()
		if ps.health.Status == models.HealthUnhealthy {
			unhealthy++
		}
		ps.mu.Unlock()
	}
	if unhealthy > 0 {
		recs = append(recs, fmt.Sprintf("Investigate %d unhealthy provider(s)", unhealthy))
	}
	if fallbackRate > 20 {
		recs = append(recs, fmt.Sprintf("High fallback rate (%.1f%%) - consider scaling primary providers", fallbackRate))
	}
	if callable < 3 {
		recs = append(recs, "Low provider diversity - add redundancy for critical operations")
	}
	if len(recs) == 0 {
		recs = append(recs, "System resilience is optimal - no immediate actions required")
	}
	return recs
}

// ResetCircuit forces one provider's breaker back to closed.
func (o *Orchestrator) ResetCircuit(provider models.Provider) error {
	ps, ok := o.states[provider]
	if !ok {
		return fmt.Errorf("unknown provider: %q", provider)
	}
	ps.breaker.Reset()
	o.metrics.observeCircuitState(provider, models.CircuitClosed)
	return nil
}

// StartHealthChecks launches the periodic background probe loop. It is the
// only mechanism that can discover recovery of a provider that receives no
// live traffic.
func (o *Orchestrator) StartHealthChecks() {
	o.started = true
	go func() {
		defer close(o.done)
		ticker := time.NewTicker(o.cfg.HealthCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				o.ProbeAll(context.Background())
			case <-o.stop:
				return
			}
		}
	}()
}

// Stop terminates the background health check loop.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stop)
		if o.started {
			<-o.done
		}
	})
}

// ProbeAll issues one lightweight probe to every provider whose circuit is not
// open, recording the outcome through the normal bookkeeping.
func (o *Orchestrator) ProbeAll(ctx context.Context) {
	for _, p := range models.AllProviders() {
		ps := o.states[p]
		if ps.breaker.State() == models.CircuitOpen {
			continue
		}
		result, latency, err := o.execute(ctx, p, healthProbePrompt, llm.Params{MaxTokens: 10, Temperature: 0.1})
		if err != nil {
			o.recordFailure(p, fmt.Sprintf("health check failed: %v", err), latency)
			continue
		}
		o.recordSuccess(p, result, latency)
	}
	o.logger.Debug("Periodic health checks completed")
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
