package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dev.supermcp.debate/internal/models"
)

// DecisionStore resolves historical decisions by task id.
type DecisionStore interface {
	FetchOriginalDecision(ctx context.Context, taskID string) (*models.OriginalDecision, error)
}

// InMemoryStore is a DecisionStore backed by a map, seeded with a couple of
// historical decisions so the replay surface works out of the box.
type InMemoryStore struct {
	mu        sync.RWMutex
	decisions map[string]*models.OriginalDecision
}

// NewInMemoryStore creates a seeded in-memory decision store.
func NewInMemoryStore() *InMemoryStore {
	now := time.Now()
	return &InMemoryStore{
		decisions: map[string]*models.OriginalDecision{
			"task_001": {
				TaskID:    "task_001",
				Timestamp: now.Add(-30 * 24 * time.Hour),
				Input:     "Create a comprehensive marketing strategy for our new AI product launch targeting enterprise customers.",
				Output:    "Basic marketing strategy: 1. Market research 2. Target audience identification 3. Campaign development 4. Budget allocation 5. Implementation timeline",
				Cost:      0.15,
				Duration:  45 * time.Second,
				Config: models.SystemConfig{
					Version:            "1.0",
					Providers:          []models.Provider{models.ProviderGPT4, models.ProviderClaude},
					ConsensusThreshold: 0.6,
					MaxRounds:          2,
				},
			},
			"task_002": {
				TaskID:    "task_002",
				Timestamp: now.Add(-15 * 24 * time.Hour),
				Input:     "Analyze the legal implications of implementing AI-driven customer service automation in healthcare.",
				Output:    "Legal analysis summary: Consider HIPAA compliance, data protection requirements, and liability issues.",
				Cost:      0.12,
				Duration:  38 * time.Second,
				Config: models.SystemConfig{
					Version:            "1.0",
					Providers:          []models.Provider{models.ProviderGPT4, models.ProviderClaude},
					ConsensusThreshold: 0.65,
					MaxRounds:          2,
				},
			},
		},
	}
}

// FetchOriginalDecision returns the stored decision or an error when the task
// is unknown.
func (s *InMemoryStore) FetchOriginalDecision(_ context.Context, taskID string) (*models.OriginalDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[taskID]
	if !ok {
		return nil, fmt.Errorf("original decision data not found: %s", taskID)
	}
	copied := *d
	return &copied, nil
}

// Put stores or replaces a decision.
func (s *InMemoryStore) Put(d *models.OriginalDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *d
	s.decisions[d.TaskID] = &copied
}
