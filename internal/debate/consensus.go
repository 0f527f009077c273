package debate

import (
	"strings"

	"dev.supermcp.debate/internal/models"
)

// Consensus measures agreement among a round's responses as a [0,1] score.
// Pairwise textual similarity is averaged and blended with the mean
// self-reported confidence (0.7 similarity, 0.3 confidence). Fewer than two
// responses cannot agree with anything, so the score is 0.
func Consensus(responses []models.ModelResponse) float64 {
	if len(responses) < 2 {
		return 0.0
	}

	totalSimilarity := 0.0
	comparisons := 0
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			totalSimilarity += textSimilarity(responses[i].Content, responses[j].Content)
			comparisons++
		}
	}
	similarity := totalSimilarity / float64(comparisons)

	confidenceSum := 0.0
	for _, r := range responses {
		confidenceSum += r.Confidence
	}
	avgConfidence := confidenceSum / float64(len(responses))

	score := similarity*0.7 + avgConfidence*0.3
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// textSimilarity blends Jaccard token overlap (0.6) with length similarity
// (0.4). Embeddings would do better; token overlap is good enough to detect
// convergence between rounds without an external service.
func textSimilarity(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	union := make(map[string]struct{}, len(wordsA)+len(wordsB))
	intersection := 0
	for w := range wordsA {
		union[w] = struct{}{}
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	for w := range wordsB {
		union[w] = struct{}{}
	}
	if len(union) == 0 {
		return 0.0
	}
	jaccard := float64(intersection) / float64(len(union))

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	lengthSimilarity := 0.0
	if maxLen > 0 {
		diff := len(a) - len(b)
		if diff < 0 {
			diff = -diff
		}
		lengthSimilarity = 1 - float64(diff)/float64(maxLen)
	}

	return jaccard*0.6 + lengthSimilarity*0.4
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
