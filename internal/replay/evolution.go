package replay

import (
	"fmt"
	"strings"

	"dev.supermcp.debate/internal/models"
)

// SystemUpgrades lists the configuration changes between the snapshot a
// decision originally ran under and the current one.
func SystemUpgrades(original, current models.SystemConfig) []string {
	var upgrades []string

	origSet := make(map[models.Provider]struct{}, len(original.Providers))
	for _, p := range original.Providers {
		origSet[p] = struct{}{}
	}
	var added []string
	for _, p := range current.Providers {
		if _, ok := origSet[p]; !ok {
			added = append(added, string(p))
		}
	}
	if len(current.Providers) > len(original.Providers) {
		upgrades = append(upgrades, fmt.Sprintf("Added %d new AI models", len(current.Providers)-len(original.Providers)))
	}
	if len(added) > 0 {
		upgrades = append(upgrades, fmt.Sprintf("Integrated new models: %s", strings.Join(added, ", ")))
	}

	if current.ConsensusThreshold > original.ConsensusThreshold {
		upgrades = append(upgrades, fmt.Sprintf("Improved quality standards (threshold: %.2f -> %.2f)",
			original.ConsensusThreshold, current.ConsensusThreshold))
	}

	origFeatures := make(map[string]struct{}, len(original.Features))
	for _, f := range original.Features {
		origFeatures[f] = struct{}{}
	}
	var newFeatures []string
	for _, f := range current.Features {
		if _, ok := origFeatures[f]; !ok {
			newFeatures = append(newFeatures, f)
		}
	}
	if len(newFeatures) > 0 {
		upgrades = append(upgrades, fmt.Sprintf("Added capabilities: %s", strings.Join(newFeatures, ", ")))
	}

	if original.Version != "" && current.Version != original.Version {
		upgrades = append(upgrades, fmt.Sprintf("System upgrade: v%s -> v%s", original.Version, current.Version))
	}

	return upgrades
}

// Evolution summarizes replay-derived improvement over the trailing period.
func (e *Engine) Evolution(period models.SystemEvolution) models.SystemEvolution {
	history := e.snapshotHistory()

	var inPeriod []*models.DecisionReplay
	for _, r := range history {
		if !r.ReplayTimestamp.Before(period.PeriodStart) && !r.ReplayTimestamp.After(period.PeriodEnd) {
			inPeriod = append(inPeriod, r)
		}
	}
	period.DecisionsAnalyzed = len(inPeriod)
	if len(inPeriod) == 0 {
		period.Trend = "stable"
		return period
	}

	var scoreSum float64
	typeCounts := make(map[models.ImprovementType]int)
	for _, r := range inPeriod {
		scoreSum += r.ImprovementScore
		for _, t := range r.ImprovementTypes {
			typeCounts[t]++
		}
	}
	period.AvgImprovementScore = scoreSum / float64(len(inPeriod))

	for t, n := range typeCounts {
		if n > len(inPeriod)/2 {
			period.KeyImprovements = append(period.KeyImprovements, string(t))
		}
	}

	switch {
	case period.AvgImprovementScore > 0.1:
		period.Trend = "improving"
	case period.AvgImprovementScore < 0:
		period.Trend = "declining"
	default:
		period.Trend = "stable"
	}
	return period
}
