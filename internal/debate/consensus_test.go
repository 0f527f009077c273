package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dev.supermcp.debate/internal/models"
)

func response(content string, confidence float64) models.ModelResponse {
	return models.ModelResponse{Content: content, Confidence: confidence}
}

// TestConsensus_RequiresTwoResponses tests the degenerate cases
func TestConsensus_RequiresTwoResponses(t *testing.T) {
	assert.Zero(t, Consensus(nil))
	assert.Zero(t, Consensus([]models.ModelResponse{response("only one", 0.9)}))
}

// TestConsensus_IdenticalResponsesScoreHigh tests full-agreement scoring
func TestConsensus_IdenticalResponsesScoreHigh(t *testing.T) {
	text := "We should invest in the enterprise segment with a phased rollout plan"
	responses := []models.ModelResponse{
		response(text, 0.9),
		response(text, 0.9),
		response(text, 0.9),
	}
	score := Consensus(responses)
	assert.GreaterOrEqual(t, score, 0.95)
	assert.LessOrEqual(t, score, 1.0)
}

// TestConsensus_DisjointResponsesScoreLow tests maximal-disagreement scoring
func TestConsensus_DisjointResponsesScoreLow(t *testing.T) {
	responses := []models.ModelResponse{
		response("alpha bravo charlie delta echo foxtrot", 0.1),
		response("uno dos tres cuatro cinco seis", 0.1),
	}
	score := Consensus(responses)
	assert.LessOrEqual(t, score, 0.3)
	assert.GreaterOrEqual(t, score, 0.0)
}

// TestConsensus_Symmetric tests order independence
func TestConsensus_Symmetric(t *testing.T) {
	a := response("expand into new markets with careful budgeting", 0.8)
	b := response("careful budgeting should guide market expansion", 0.7)
	c := response("prioritize retention over expansion this quarter", 0.6)

	forward := Consensus([]models.ModelResponse{a, b, c})
	reversed := Consensus([]models.ModelResponse{c, b, a})
	assert.InDelta(t, forward, reversed, 1e-9)
}

// TestConsensus_ConfidenceBlending tests that confidence shifts the blend
func TestConsensus_ConfidenceBlending(t *testing.T) {
	text := "identical position statement from both participants"
	low := Consensus([]models.ModelResponse{response(text, 0.1), response(text, 0.1)})
	high := Consensus([]models.ModelResponse{response(text, 0.95), response(text, 0.95)})
	assert.Greater(t, high, low)
}

// TestTextSimilarity_Bounds tests the pairwise similarity bounds
func TestTextSimilarity_Bounds(t *testing.T) {
	assert.InDelta(t, 1.0, textSimilarity("same words here", "same words here"), 1e-9)

	disjoint := textSimilarity("aaa bbb ccc", "xxx yyy zzz")
	assert.GreaterOrEqual(t, disjoint, 0.0)
	assert.Less(t, disjoint, 0.5, "no token overlap leaves only the length component")

	assert.Equal(t, 0.0, textSimilarity("", ""))
}
