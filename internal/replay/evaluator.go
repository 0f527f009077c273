package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
)

// QualityEvaluation is the structured result of comparing an original output
// against its replay.
type QualityEvaluation struct {
	ImprovementScore    float64  `json:"improvement_score"`
	QualityComparison   string   `json:"quality_comparison"`
	KeyImprovements     []string `json:"key_improvements"`
	AreasEnhanced       []string `json:"areas_enhanced"`
	ConsistencyImproved bool     `json:"consistency_improved"`
	Recommendation      string   `json:"recommendation"`
}

// Evaluator judges how much a replay output improves on the original.
type Evaluator interface {
	Evaluate(ctx context.Context, input, original, replayOutput string) (*QualityEvaluation, error)
}

// ModelCaller is the slice of the resilient call surface the LLM evaluator
// needs.
type ModelCaller interface {
	CallWithResilience(ctx context.Context, provider models.Provider, prompt string, params llm.Params) (*models.ModelResult, error)
	BestAvailableProvider() (models.Provider, bool)
}

// LLMEvaluator asks a model for a structured JSON comparison. Any call or
// parse failure is returned as an error so the caller can degrade to the
// heuristic evaluator.
type LLMEvaluator struct {
	caller ModelCaller
	logger *logrus.Logger
}

// NewLLMEvaluator creates a model-judged evaluator.
func NewLLMEvaluator(caller ModelCaller, logger *logrus.Logger) *LLMEvaluator {
	if logger == nil {
		logger = logrus.New()
	}
	return &LLMEvaluator{caller: caller, logger: logger}
}

func (e *LLMEvaluator) Evaluate(ctx context.Context, input, original, replayOutput string) (*QualityEvaluation, error) {
	provider, ok := e.caller.BestAvailableProvider()
	if !ok {
		return nil, fmt.Errorf("no provider available for quality evaluation")
	}

	prompt := buildEvaluationPrompt(input, original, replayOutput)
	result, err := e.caller.CallWithResilience(ctx, provider, prompt, llm.Params{MaxTokens: 1000, Temperature: 0.1})
	if err != nil {
		return nil, fmt.Errorf("quality evaluation call: %w", err)
	}

	eval, err := parseEvaluation(result.Content)
	if err != nil {
		return nil, err
	}
	return eval, nil
}

func buildEvaluationPrompt(input, original, replayOutput string) string {
	return fmt.Sprintf(`Evaluate the improvement between two responses to the same request. Provide a detailed analysis.

ORIGINAL REQUEST:
%s

ORIGINAL RESPONSE:
%s

IMPROVED RESPONSE:
%s

Please analyze the improvement across these dimensions:
1. Quality and depth of analysis
2. Completeness and comprehensiveness
3. Actionability and specificity
4. Structure and clarity
5. Professional value and insight

Provide your analysis in this JSON format:
{
    "improvement_score": 0.0-1.0,
    "quality_comparison": "detailed comparison",
    "key_improvements": ["list", "of", "improvements"],
    "areas_enhanced": ["analysis", "structure", "etc"],
    "consistency_improved": true/false,
    "recommendation": "overall assessment"
}

Be objective and quantitative in your assessment.`, input, original, replayOutput)
}

// parseEvaluation extracts the first JSON object from the completion. Models
// often wrap the JSON in prose.
func parseEvaluation(content string) (*QualityEvaluation, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in evaluation response")
	}
	var eval QualityEvaluation
	if err := json.Unmarshal([]byte(content[start:end+1]), &eval); err != nil {
		return nil, fmt.Errorf("parsing evaluation response: %w", err)
	}
	if eval.ImprovementScore < 0 || eval.ImprovementScore > 1 {
		return nil, fmt.Errorf("improvement score %f out of range", eval.ImprovementScore)
	}
	return &eval, nil
}

// HeuristicEvaluator is the deterministic fallback: relative length growth,
// structural signals, and quality indicator terms.
type HeuristicEvaluator struct{}

var qualityKeywords = []string{"specific", "detailed", "comprehensive", "actionable", "strategy", "implementation"}

func (HeuristicEvaluator) Evaluate(_ context.Context, _ string, original, replayOutput string) (*QualityEvaluation, error) {
	lengthImprovement := 0.0
	if len(original) > 0 {
		lengthImprovement = float64(len(replayOutput)-len(original)) / float64(len(original))
	}

	origLines := strings.Count(original, "\n")
	structureImprovement := float64(strings.Count(replayOutput, "\n")-origLines) / float64(maxInt(origLines, 1))

	origKeywords := countQualityKeywords(original)
	replayKeywords := countQualityKeywords(replayOutput)
	keywordImprovement := float64(replayKeywords-origKeywords) / float64(maxInt(origKeywords, 1))

	score := lengthImprovement*0.3 + structureImprovement*0.3 + keywordImprovement*0.4
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var keyImprovements []string
	if score > 0.1 {
		keyImprovements = []string{"Enhanced detail", "Better structure"}
	}
	recommendation := "Moderate improvement"
	if score > 0.2 {
		recommendation = "Significant improvement"
	}

	return &QualityEvaluation{
		ImprovementScore:    score,
		QualityComparison:   fmt.Sprintf("Length improved by %.1f%%, structure by %.1f%%", lengthImprovement*100, structureImprovement*100),
		KeyImprovements:     keyImprovements,
		AreasEnhanced:       []string{"content_depth", "organization"},
		ConsistencyImproved: score > 0.15,
		Recommendation:      recommendation,
	}, nil
}

func countQualityKeywords(s string) int {
	lower := strings.ToLower(s)
	n := 0
	for _, kw := range qualityKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
