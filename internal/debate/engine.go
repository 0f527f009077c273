// Package debate runs structured multi-round debates across role-assigned
// model providers and distills them into a single recommendation.
package debate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/roles"
)

// Caller is the resilient call surface the engine depends on. The resilience
// orchestrator satisfies it.
type Caller interface {
	CallWithResilience(ctx context.Context, provider models.Provider, prompt string, params llm.Params) (*models.ModelResult, error)
	BestAvailableProvider() (models.Provider, bool)
}

var debateParams = llm.Params{MaxTokens: 1500, Temperature: 0.1}

// Engine conducts debates. Safe for concurrent use.
type Engine struct {
	caller   Caller
	roleOrch *roles.Orchestrator
	cfg      config.DebateConfig
	quality  config.QualityConfig
	logger   *logrus.Logger

	historyMu sync.Mutex
	history   []*models.DebateResult
}

// NewEngine creates a debate engine over the given resilient caller.
func NewEngine(caller Caller, roleOrch *roles.Orchestrator, cfg config.DebateConfig, quality config.QualityConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		caller:   caller,
		roleOrch: roleOrch,
		cfg:      cfg,
		quality:  quality,
		logger:   logger,
	}
}

// ConductDebate runs the full debate: an opening round, iterative rounds until
// consensus or the round budget is exhausted, and a final synthesis. Provider
// failures never fail a round; the resilient caller degrades them into
// fallback content or absence.
func (e *Engine) ConductDebate(ctx context.Context, content, domain string, assignments map[models.Provider]roles.Assignment, clientContext map[string]string) (*models.DebateResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errEmptyContent
	}
	if len(assignments) == 0 {
		return nil, errNoAssignments
	}

	start := time.Now()
	taskID := "debate_" + uuid.NewString()
	e.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"domain":  domain,
		"seats":   len(assignments),
	}).Info("Starting debate")

	maxRounds := e.cfg.MaxRounds
	if maxRounds < 1 {
		maxRounds = 1
	}

	opening := e.conductRound(ctx, 1, "Opening Statements", domain, assignments, func(a roles.Assignment) string {
		return e.roleOrch.RolePrompt(a.Role, content, clientContext)
	})
	rounds := []models.DebateRound{opening}

	if opening.ConsensusScore < e.cfg.ConsensusThreshold {
		for roundNum := 2; roundNum <= maxRounds; roundNum++ {
			previous := rounds[len(rounds)-1]
			round := e.conductRound(ctx, roundNum, "Debate Round", domain, assignments, func(a roles.Assignment) string {
				return buildDebatePrompt(e.roleOrch.RolePrompt(a.Role, content, clientContext), previous, a.Role)
			})
			rounds = append(rounds, round)
			e.logger.WithFields(logrus.Fields{
				"task_id":   taskID,
				"round":     roundNum,
				"consensus": round.ConsensusScore,
			}).Info("Debate round completed")
			if round.ConsensusScore >= e.cfg.ConsensusThreshold {
				break
			}
		}
	} else {
		e.logger.WithFields(logrus.Fields{
			"task_id":   taskID,
			"consensus": opening.ConsensusScore,
		}).Info("Early consensus achieved")
	}

	best := rounds[0]
	for _, r := range rounds[1:] {
		if r.ConsensusScore > best.ConsensusScore {
			best = r
		}
	}

	finalResult := best.Synthesis
	var synthesisCost float64
	var synthesisTokens int
	if len(rounds) > 1 {
		finalResult, synthesisCost, synthesisTokens = e.finalSynthesis(ctx, rounds, domain, best.Synthesis)
	}

	finalConsensus := rounds[len(rounds)-1].ConsensusScore
	result := &models.DebateResult{
		TaskID:              taskID,
		Domain:              domain,
		Rounds:              rounds,
		FinalResult:         finalResult,
		ConsensusScore:      finalConsensus,
		QualityScore:        e.qualityScore(finalResult, finalConsensus),
		ModelUsage:          extractModelUsage(rounds),
		TotalCost:           synthesisCost,
		TotalTokens:         synthesisTokens,
		TotalDuration:       time.Since(start),
		HumanReviewRequired: finalConsensus < e.cfg.ConsensusThreshold,
	}
	for _, round := range rounds {
		for _, r := range round.Responses {
			result.TotalCost += r.Cost
			result.TotalTokens += r.Tokens
		}
	}

	e.historyMu.Lock()
	e.history = append(e.history, result)
	e.historyMu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"rounds":    len(rounds),
		"consensus": finalConsensus,
		"cost":      result.TotalCost,
	}).Info("Debate completed")

	return result, nil
}

// conductRound fans out one call per assignment inside the round timeout.
// Each call has its own timeout inside the resilient caller; a slow or failed
// seat never blocks or cancels its siblings, the round simply proceeds with
// whatever completed.
func (e *Engine) conductRound(ctx context.Context, number int, topic, domain string, assignments map[models.Provider]roles.Assignment, promptFor func(roles.Assignment) string) models.DebateRound {
	start := time.Now()

	roundCtx, cancel := context.WithTimeout(ctx, e.cfg.RoundTimeout)
	defer cancel()

	var mu sync.Mutex
	responses := make([]models.ModelResponse, 0, len(assignments))

	g, gctx := errgroup.WithContext(roundCtx)
	for provider, assignment := range assignments {
		g.Go(func() error {
			callStart := time.Now()
			result, err := e.caller.CallWithResilience(gctx, provider, promptFor(assignment), debateParams)
			if err != nil {
				// Only malformed input reaches here; availability
				// issues are absorbed by the caller.
				e.logger.WithFields(logrus.Fields{
					"provider": provider,
					"round":    number,
					"error":    err.Error(),
				}).Warn("Seat dropped from round")
				return nil
			}
			mu.Lock()
			responses = append(responses, models.ModelResponse{
				Provider:   result.Provider,
				Role:       assignment.Role,
				Content:    result.Content,
				Confidence: result.Confidence,
				Timestamp:  time.Now(),
				Tokens:     result.Tokens,
				Latency:    time.Since(callStart),
				Cost:       result.Cost,
				IsFallback: result.IsFallback,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return models.DebateRound{
		RoundNumber:    number,
		Topic:          topic,
		Responses:      responses,
		ConsensusScore: Consensus(responses),
		Synthesis:      synthesizeResponses(responses, domain),
		Duration:       time.Since(start),
	}
}

// finalSynthesis issues one synthesis-only call through the best available
// provider, falling back to the best round's synthesis if the call fails.
func (e *Engine) finalSynthesis(ctx context.Context, rounds []models.DebateRound, domain, fallback string) (string, float64, int) {
	provider, ok := e.caller.BestAvailableProvider()
	if !ok {
		e.logger.Warn("No provider available for final synthesis, using best round synthesis")
		return fallback, 0, 0
	}

	result, err := e.caller.CallWithResilience(ctx, provider, buildFinalSynthesisPrompt(rounds, domain), debateParams)
	if err != nil {
		e.logger.WithField("error", err.Error()).Warn("Final synthesis failed, using best round synthesis")
		return fallback, 0, 0
	}
	return result.Content, result.Cost, result.Tokens
}

// qualityScore is a configurable heuristic over the final synthesis: length
// completeness, structural markers, and the consensus that produced it.
func (e *Engine) qualityScore(finalResult string, consensus float64) float64 {
	target := e.quality.TargetLength
	if target <= 0 {
		target = 1500
	}
	lengthScore := float64(len(finalResult)) / float64(target)
	if lengthScore > 1.0 {
		lengthScore = 1.0
	}

	markers := []string{"##", "- ", "1.", "**"}
	found := 0
	for _, m := range markers {
		if strings.Contains(finalResult, m) {
			found++
		}
	}
	structureScore := float64(found) / float64(len(markers))

	score := lengthScore*e.quality.LengthWeight +
		structureScore*e.quality.StructureWeight +
		consensus*e.quality.ConsensusWeight
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func extractModelUsage(rounds []models.DebateRound) map[models.Provider]models.ModelUsage {
	usage := make(map[models.Provider]models.ModelUsage)
	confidenceSums := make(map[models.Provider]float64)
	for _, round := range rounds {
		for _, r := range round.Responses {
			u := usage[r.Provider]
			u.Role = r.Role
			u.Rounds++
			u.TotalTokens += r.Tokens
			u.TotalCost += r.Cost
			usage[r.Provider] = u
			confidenceSums[r.Provider] += r.Confidence
		}
	}
	for p, u := range usage {
		if u.Rounds > 0 {
			u.AvgConfidence = confidenceSums[p] / float64(u.Rounds)
			usage[p] = u
		}
	}
	return usage
}
