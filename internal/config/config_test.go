package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.supermcp.debate/internal/models"
)

// TestLoad_Defaults tests the environment defaults
func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Debate.MaxRounds)
	assert.InDelta(t, 0.95, cfg.Debate.ConsensusThreshold, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.Replay.RecencyWindow)
	assert.InDelta(t, 0.6, cfg.Replay.QualityWeight, 1e-9)
	assert.Equal(t, 50, cfg.Resilience.HealthSampleSize)
	assert.Equal(t, time.Hour, cfg.Resilience.HealthWindow)

	gpt4 := cfg.Resilience.CircuitFor(models.ProviderGPT4)
	assert.Equal(t, 5, gpt4.FailureThreshold)
	assert.Equal(t, 60*time.Second, gpt4.OpenTimeout)

	local := cfg.Resilience.CircuitFor(models.ProviderLocalBackup)
	assert.Equal(t, 10, local.FailureThreshold)
	assert.Equal(t, 1, local.SuccessThreshold)
}

// TestLoad_EnvironmentOverrides tests env var precedence
func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DEBATE_MAX_ROUNDS", "5")
	t.Setenv("CONSENSUS_THRESHOLD", "0.8")
	t.Setenv("CB_GPT4_FAILURES", "7")
	t.Setenv("HEALTH_CHECK_INTERVAL", "1m")

	cfg := Load()
	assert.Equal(t, 5, cfg.Debate.MaxRounds)
	assert.InDelta(t, 0.8, cfg.Debate.ConsensusThreshold, 1e-9)
	assert.Equal(t, 7, cfg.Resilience.CircuitFor(models.ProviderGPT4).FailureThreshold)
	assert.Equal(t, time.Minute, cfg.Resilience.HealthCheckInterval)
}

// TestLoad_MalformedEnvFallsBack tests that bad values keep defaults
func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("DEBATE_MAX_ROUNDS", "not-a-number")
	t.Setenv("CONSENSUS_THRESHOLD", "also-bad")

	cfg := Load()
	assert.Equal(t, 3, cfg.Debate.MaxRounds)
	assert.InDelta(t, 0.95, cfg.Debate.ConsensusThreshold, 1e-9)
}

// TestCircuitFor_UnknownProviderDefaults tests the fallback circuit config
func TestCircuitFor_UnknownProviderDefaults(t *testing.T) {
	r := ResilienceConfig{}
	c := r.CircuitFor("mystery")
	assert.Equal(t, 5, c.FailureThreshold)
	assert.Equal(t, 3, c.SuccessThreshold)
	assert.Equal(t, 60*time.Second, c.OpenTimeout)
}

// TestLoadWithFile tests the YAML overlay
func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debate:\n  max_rounds: 7\nserver:\n  port: \"9000\"\n"), 0o644))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Debate.MaxRounds)
	assert.Equal(t, "9000", cfg.Server.Port)
	// Untouched values keep their environment defaults.
	assert.InDelta(t, 0.95, cfg.Debate.ConsensusThreshold, 1e-9)
}

// TestLoadWithFile_MissingAndMalformed tests the file edge cases
func TestLoadWithFile_MissingAndMalformed(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing file is not an error")
	assert.NotNil(t, cfg)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debate: ["), 0o644))
	_, err = LoadWithFile(path)
	assert.Error(t, err)
}

// TestCurrentSystemConfig tests the replay snapshot
func TestCurrentSystemConfig(t *testing.T) {
	cfg := Load()
	snapshot := cfg.CurrentSystemConfig()

	assert.Equal(t, Version, snapshot.Version)
	assert.Equal(t, models.AllProviders(), snapshot.Providers)
	assert.InDelta(t, cfg.Debate.ConsensusThreshold, snapshot.ConsensusThreshold, 1e-9)
	assert.Contains(t, snapshot.Features, "decision_replay")
}
