package debate

import (
	"fmt"
	"sort"
	"strings"

	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/roles"
)

// synthesizeResponses merges a round's responses into one structured summary,
// ordered by self-reported confidence. An empty round still produces text so a
// debate never surfaces an empty result.
func synthesizeResponses(responses []models.ModelResponse, domain string) string {
	if len(responses) == 0 {
		return "No responses available for synthesis"
	}
	if len(responses) == 1 {
		return responses[0].Content
	}

	ordered := make([]models.ModelResponse, len(responses))
	copy(ordered, responses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	var b strings.Builder
	fmt.Fprintf(&b, "## Multi-Model Analysis Summary for %s\n\n", titleCase(domain))
	for _, r := range ordered {
		fmt.Fprintf(&b, "**%s Perspective** (confidence: %.2f):\n%s\n\n",
			roles.DisplayName(r.Role), r.Confidence, r.Content)
	}

	top := ordered[0]
	b.WriteString("## Recommended Approach\n")
	fmt.Fprintf(&b, "Based on the multi-model analysis, the highest confidence recommendation comes from the %s perspective:\n\n",
		roles.DisplayName(top.Role))
	b.WriteString(truncate(top.Content, 500))

	return b.String()
}

// buildDebatePrompt extends a role prompt with the prior round's positions so
// the provider can agree, disagree, or refine.
func buildDebatePrompt(rolePrompt string, previous models.DebateRound, role models.Role) string {
	var b strings.Builder
	b.WriteString(rolePrompt)
	b.WriteString("\n\n## DEBATE CONTEXT\nPrevious round responses:\n")
	for _, r := range previous.Responses {
		fmt.Fprintf(&b, "- **%s**: %s\n", roles.DisplayName(r.Role), truncate(r.Content, 200))
	}
	fmt.Fprintf(&b, "\nCurrent synthesis: %s\n", truncate(previous.Synthesis, 300))

	name := roles.DisplayName(role)
	fmt.Fprintf(&b, `
## YOUR TASK
Review the previous responses and current synthesis. As a %s, provide:

1. **Agreement/Disagreement**: What aspects do you agree or disagree with from other perspectives?
2. **Additional Insights**: What unique value does your %s perspective add?
3. **Refinement**: How would you refine or improve the current synthesis?
4. **Final Recommendation**: Your conclusive recommendation from your specialized viewpoint.

Focus on constructive debate that leads to the best possible outcome.
`, name, strings.ToLower(name))

	return b.String()
}

// buildFinalSynthesisPrompt asks for one integrated recommendation across all
// conducted rounds.
func buildFinalSynthesisPrompt(rounds []models.DebateRound, domain string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a senior consultant, synthesize the following multi-round debate into a final, actionable recommendation for %s:\n\n", domain)
	for _, round := range rounds {
		fmt.Fprintf(&b, "## Round %d: %s\n", round.RoundNumber, round.Topic)
		fmt.Fprintf(&b, "Consensus Score: %.2f\n", round.ConsensusScore)
		fmt.Fprintf(&b, "Synthesis: %s\n\n", truncate(round.Synthesis, 300))
	}
	b.WriteString(`Provide a final synthesis that:
1. Integrates the best insights from all rounds
2. Resolves any remaining conflicts or disagreements
3. Provides clear, actionable recommendations
4. Maintains the specialized perspectives that emerged
5. Is practical and implementable

Format as a structured executive summary with clear next steps.
`)
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
