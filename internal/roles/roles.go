// Package roles assigns specialized perspectives to providers based on a
// lightweight contextual analysis of the task content.
package roles

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.supermcp.debate/internal/models"
)

// Assignment binds one provider to a role for a debate, with the analysis
// factors that drove the choice.
type Assignment struct {
	Provider   models.Provider    `json:"provider"`
	Role       models.Role        `json:"role"`
	Factors    map[string]float64 `json:"factors"`
	Reason     string             `json:"reason"`
	Confidence float64            `json:"confidence"`
}

// ContextAnalysis scores the task along the dimensions that drive role choice.
type ContextAnalysis struct {
	ComplexityScore     float64 `json:"complexity_score"`
	RiskLevel           float64 `json:"risk_level"`
	InnovationBias      float64 `json:"innovation_bias"` // -1 conservative .. +1 innovative
	FinancialImpact     float64 `json:"financial_impact"`
	TechnicalComplexity float64 `json:"technical_complexity"`
	RegulatoryRisk      float64 `json:"regulatory_risk"`
	BrandSensitivity    float64 `json:"brand_sensitivity"`
}

var metricPattern = regexp.MustCompile(`\d+%|\$\d+`)

var (
	riskKeywords         = []string{"compliance", "regulation", "legal", "audit", "risk", "security"}
	innovationKeywords   = []string{"innovation", "disrupt", "new", "cutting-edge", "breakthrough"}
	conservativeKeywords = []string{"proven", "stable", "reliable", "traditional", "established"}
	financialKeywords    = []string{"revenue", "cost", "roi", "budget", "profit", "investment"}
	techKeywords         = []string{"api", "architecture", "development", "integration", "system"}
	brandKeywords        = []string{"brand", "reputation", "image", "customer", "public"}
)

// Orchestrator performs contextual role assignment.
type Orchestrator struct {
	logger *logrus.Logger
}

// NewOrchestrator creates a role orchestrator.
func NewOrchestrator(logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{logger: logger}
}

// AssignRolesByContext analyzes the task and maps each remote provider to the
// role its strengths best serve.
func (o *Orchestrator) AssignRolesByContext(content, domain string, clientContext map[string]string) map[models.Provider]Assignment {
	analysis := o.AnalyzeContext(content, domain)
	assignments := make(map[models.Provider]Assignment, 3)

	// Financial/strategic seat.
	var gptRole models.Role
	var gptReason string
	if analysis.FinancialImpact > 0.3 || domain == "proposal" {
		if analysis.InnovationBias > 0 {
			gptRole = models.RoleCFOGrowth
			gptReason = fmt.Sprintf("growth-oriented CFO for innovation focus (bias %.2f)", analysis.InnovationBias)
		} else {
			gptRole = models.RoleCFOConservative
			gptReason = fmt.Sprintf("conservative CFO for stability focus (risk %.2f)", analysis.RiskLevel)
		}
	} else if analysis.ComplexityScore > 0.5 {
		gptRole = models.RoleStrategyExecution
		gptReason = fmt.Sprintf("execution strategist for complexity %.2f", analysis.ComplexityScore)
	} else {
		gptRole = models.RoleStrategyVision
		gptReason = fmt.Sprintf("vision strategist for complexity %.2f", analysis.ComplexityScore)
	}
	assignments[models.ProviderGPT4] = Assignment{
		Provider:   models.ProviderGPT4,
		Role:       gptRole,
		Factors:    map[string]float64{"financial_impact": analysis.FinancialImpact, "innovation": analysis.InnovationBias},
		Reason:     gptReason,
		Confidence: 0.8 + analysis.FinancialImpact*0.2,
	}

	// Technical/legal seat.
	var claudeRole models.Role
	var claudeReason string
	switch {
	case analysis.TechnicalComplexity > 0.4 || domain == "contract":
		if analysis.InnovationBias > 0.2 {
			claudeRole = models.RoleCTOInnovative
		} else {
			claudeRole = models.RoleCTOPragmatic
		}
		claudeReason = fmt.Sprintf("technical seat for complexity %.2f", analysis.TechnicalComplexity)
	case analysis.RegulatoryRisk > 0.5:
		claudeRole = models.RoleLegalCompliance
		claudeReason = fmt.Sprintf("compliance seat for regulatory risk %.2f", analysis.RegulatoryRisk)
	case analysis.RegulatoryRisk > 0.3:
		claudeRole = models.RoleLegalBusiness
		claudeReason = fmt.Sprintf("business-legal seat for regulatory risk %.2f", analysis.RegulatoryRisk)
	default:
		claudeRole = models.RoleCTOPragmatic
		claudeReason = "default technical analysis seat"
	}
	assignments[models.ProviderClaude] = Assignment{
		Provider:   models.ProviderClaude,
		Role:       claudeRole,
		Factors:    map[string]float64{"technical_complexity": analysis.TechnicalComplexity, "regulatory_risk": analysis.RegulatoryRisk},
		Reason:     claudeReason,
		Confidence: 0.75 + analysis.TechnicalComplexity*0.25,
	}

	// Marketing/strategic seat.
	var geminiRole models.Role
	var geminiReason string
	if analysis.BrandSensitivity > 0.3 || domain == "content" {
		if strings.Contains(strings.ToLower(domain), "growth") || analysis.FinancialImpact > 0.4 {
			geminiRole = models.RoleCMOGrowth
		} else {
			geminiRole = models.RoleCMOBrand
		}
		geminiReason = fmt.Sprintf("marketing seat for brand sensitivity %.2f", analysis.BrandSensitivity)
	} else if analysis.InnovationBias > 0 {
		geminiRole = models.RoleStrategyVision
		geminiReason = fmt.Sprintf("vision seat for innovation bias %.2f", analysis.InnovationBias)
	} else {
		geminiRole = models.RoleStrategyExecution
		geminiReason = fmt.Sprintf("execution seat for innovation bias %.2f", analysis.InnovationBias)
	}
	assignments[models.ProviderGemini] = Assignment{
		Provider:   models.ProviderGemini,
		Role:       geminiRole,
		Factors:    map[string]float64{"brand_sensitivity": analysis.BrandSensitivity, "innovation": analysis.InnovationBias},
		Reason:     geminiReason,
		Confidence: 0.7 + analysis.BrandSensitivity*0.3,
	}

	o.logger.WithFields(logrus.Fields{
		"domain": domain,
		"roles":  rolesOf(assignments),
	}).Info("Roles assigned")

	return assignments
}

// AnalyzeContext computes the keyword-driven context scores for a task.
func (o *Orchestrator) AnalyzeContext(content, domain string) ContextAnalysis {
	lower := strings.ToLower(content)

	complexityIndicators := []bool{
		len(strings.Fields(content)) > 500,
		len(metricPattern.FindAllString(content, -1)) > 3,
		strings.Contains(lower, "implementation"),
		strings.Contains(lower, "strategy"),
		strings.Contains(lower, "integration"),
	}
	complexity := 0.0
	for _, hit := range complexityIndicators {
		if hit {
			complexity++
		}
	}
	complexity /= float64(len(complexityIndicators))

	innovation := float64(countKeywords(lower, innovationKeywords))
	conservative := float64(countKeywords(lower, conservativeKeywords))
	bias := (innovation - conservative) / maxFloat(innovation+conservative, 1)

	risk := keywordRatio(lower, riskKeywords)
	return ContextAnalysis{
		ComplexityScore:     complexity,
		RiskLevel:           risk,
		InnovationBias:      bias,
		FinancialImpact:     keywordRatio(lower, financialKeywords),
		TechnicalComplexity: keywordRatio(lower, techKeywords),
		RegulatoryRisk:      risk,
		BrandSensitivity:    keywordRatio(lower, brandKeywords),
	}
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func keywordRatio(lower string, keywords []string) float64 {
	return float64(countKeywords(lower, keywords)) / float64(len(keywords))
}

func rolesOf(assignments map[models.Provider]Assignment) []string {
	out := make([]string, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, string(a.Role))
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
