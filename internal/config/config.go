package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"dev.supermcp.debate/internal/models"
)

// Version is the configuration schema version recorded on replay snapshots.
const Version = "2.0"

// Config holds the full runtime configuration. Values come from the
// environment with sensible defaults; an optional YAML file can override them.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Debate     DebateConfig     `yaml:"debate"`
	Replay     ReplayConfig     `yaml:"replay"`
	Quality    QualityConfig    `yaml:"quality"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Mode         string        `yaml:"mode"` // "debug" or "release"
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CircuitConfig holds per-provider circuit breaker thresholds.
type CircuitConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"` // consecutive failures to open
	SuccessThreshold int           `yaml:"success_threshold"` // consecutive half-open successes to close
	OpenTimeout      time.Duration `yaml:"open_timeout"`      // cooldown before probing
	RequestTimeout   time.Duration `yaml:"request_timeout"`   // per-call bound
}

type ResilienceConfig struct {
	Circuits            map[models.Provider]CircuitConfig `yaml:"circuits"`
	HealthCheckInterval time.Duration                     `yaml:"health_check_interval"`
	HealthWindow        time.Duration                     `yaml:"health_window"`
	HealthSampleSize    int                               `yaml:"health_sample_size"`
	HistorySize         int                               `yaml:"history_size"`
	FallbackPenalty     float64                           `yaml:"fallback_penalty"`      // multiplier on fallback confidence
	EmergencyConfidence float64                           `yaml:"emergency_confidence"` // confidence of the emergency response
}

// CircuitFor returns the circuit configuration for a provider, falling back to
// defaults for providers without an explicit entry.
func (r ResilienceConfig) CircuitFor(p models.Provider) CircuitConfig {
	if c, ok := r.Circuits[p]; ok {
		return c
	}
	return CircuitConfig{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		OpenTimeout:      60 * time.Second,
		RequestTimeout:   30 * time.Second,
	}
}

type DebateConfig struct {
	MaxRounds          int           `yaml:"max_rounds"`
	ConsensusThreshold float64       `yaml:"consensus_threshold"`
	RoundTimeout       time.Duration `yaml:"round_timeout"`
}

type ReplayConfig struct {
	RecencyWindow    time.Duration `yaml:"recency_window"`
	QualityThreshold float64       `yaml:"quality_threshold"`
	CostThreshold    float64       `yaml:"cost_threshold"`
	SpeedThreshold   float64       `yaml:"speed_threshold"`
	QualityWeight    float64       `yaml:"quality_weight"`
	CostWeight       float64       `yaml:"cost_weight"`
	SpeedWeight      float64       `yaml:"speed_weight"`
}

// QualityConfig tunes the heuristic quality score attached to debate results.
// The blend is deliberately configurable; it is an internal signal, not an
// externally validated metric.
type QualityConfig struct {
	LengthWeight    float64 `yaml:"length_weight"`
	StructureWeight float64 `yaml:"structure_weight"`
	ConsensusWeight float64 `yaml:"consensus_weight"`
	TargetLength    int     `yaml:"target_length"` // synthesis length considered "complete"
}

// Load builds a Config from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "8090"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
		},
		Resilience: ResilienceConfig{
			Circuits: map[models.Provider]CircuitConfig{
				models.ProviderGPT4: {
					FailureThreshold: getEnvInt("CB_GPT4_FAILURES", 5),
					SuccessThreshold: getEnvInt("CB_GPT4_SUCCESSES", 3),
					OpenTimeout:      getEnvDuration("CB_GPT4_TIMEOUT", 60*time.Second),
					RequestTimeout:   getEnvDuration("CB_GPT4_REQUEST_TIMEOUT", 30*time.Second),
				},
				models.ProviderClaude: {
					FailureThreshold: getEnvInt("CB_CLAUDE_FAILURES", 5),
					SuccessThreshold: getEnvInt("CB_CLAUDE_SUCCESSES", 3),
					OpenTimeout:      getEnvDuration("CB_CLAUDE_TIMEOUT", 60*time.Second),
					RequestTimeout:   getEnvDuration("CB_CLAUDE_REQUEST_TIMEOUT", 30*time.Second),
				},
				models.ProviderGemini: {
					FailureThreshold: getEnvInt("CB_GEMINI_FAILURES", 4),
					SuccessThreshold: getEnvInt("CB_GEMINI_SUCCESSES", 3),
					OpenTimeout:      getEnvDuration("CB_GEMINI_TIMEOUT", 45*time.Second),
					RequestTimeout:   getEnvDuration("CB_GEMINI_REQUEST_TIMEOUT", 30*time.Second),
				},
				models.ProviderLocalBackup: {
					FailureThreshold: getEnvInt("CB_LOCAL_FAILURES", 10),
					SuccessThreshold: getEnvInt("CB_LOCAL_SUCCESSES", 1),
					OpenTimeout:      getEnvDuration("CB_LOCAL_TIMEOUT", 30*time.Second),
					RequestTimeout:   getEnvDuration("CB_LOCAL_REQUEST_TIMEOUT", 15*time.Second),
				},
			},
			HealthCheckInterval: getEnvDuration("HEALTH_CHECK_INTERVAL", 5*time.Minute),
			HealthWindow:        getEnvDuration("HEALTH_WINDOW", time.Hour),
			HealthSampleSize:    getEnvInt("HEALTH_SAMPLE_SIZE", 50),
			HistorySize:         getEnvInt("CALL_HISTORY_SIZE", 1000),
			FallbackPenalty:     getEnvFloat("FALLBACK_PENALTY", 0.9),
			EmergencyConfidence: getEnvFloat("EMERGENCY_CONFIDENCE", 0.3),
		},
		Debate: DebateConfig{
			MaxRounds:          getEnvInt("DEBATE_MAX_ROUNDS", 3),
			ConsensusThreshold: getEnvFloat("CONSENSUS_THRESHOLD", 0.95),
			RoundTimeout:       getEnvDuration("DEBATE_ROUND_TIMEOUT", 30*time.Second),
		},
		Replay: ReplayConfig{
			RecencyWindow:    getEnvDuration("REPLAY_RECENCY_WINDOW", 24*time.Hour),
			QualityThreshold: getEnvFloat("REPLAY_QUALITY_THRESHOLD", 0.15),
			CostThreshold:    getEnvFloat("REPLAY_COST_THRESHOLD", 0.10),
			SpeedThreshold:   getEnvFloat("REPLAY_SPEED_THRESHOLD", 0.10),
			QualityWeight:    getEnvFloat("REPLAY_QUALITY_WEIGHT", 0.6),
			CostWeight:       getEnvFloat("REPLAY_COST_WEIGHT", 0.2),
			SpeedWeight:      getEnvFloat("REPLAY_SPEED_WEIGHT", 0.2),
		},
		Quality: QualityConfig{
			LengthWeight:    getEnvFloat("QUALITY_LENGTH_WEIGHT", 0.3),
			StructureWeight: getEnvFloat("QUALITY_STRUCTURE_WEIGHT", 0.2),
			ConsensusWeight: getEnvFloat("QUALITY_CONSENSUS_WEIGHT", 0.5),
			TargetLength:    getEnvInt("QUALITY_TARGET_LENGTH", 1500),
		},
	}
}

// LoadWithFile loads the environment configuration and overlays a YAML file on
// top of it. A missing file is not an error; a malformed one is.
func LoadWithFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// CurrentSystemConfig produces the snapshot recorded on every decision replay.
func (c *Config) CurrentSystemConfig() models.SystemConfig {
	return models.SystemConfig{
		Version:              Version,
		Providers:            models.AllProviders(),
		ConsensusThreshold:   c.Debate.ConsensusThreshold,
		MaxRounds:            c.Debate.MaxRounds,
		MinimumQuality:       0.8,
		HumanReviewThreshold: c.Debate.ConsensusThreshold,
		Features: []string{
			"dynamic_roles",
			"decision_replay",
			"model_resilience",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
