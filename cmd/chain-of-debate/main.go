package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/debate"
	"dev.supermcp.debate/internal/handlers"
	"dev.supermcp.debate/internal/llm"
	"dev.supermcp.debate/internal/models"
	"dev.supermcp.debate/internal/replay"
	"dev.supermcp.debate/internal/resilience"
	"dev.supermcp.debate/internal/roles"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadWithFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	registry := buildProviderRegistry()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := resilience.NewMetrics(promRegistry)

	orchestrator := resilience.NewOrchestrator(registry, cfg.Resilience, logger, metrics)
	orchestrator.StartHealthChecks()
	defer orchestrator.Stop()

	roleOrch := roles.NewOrchestrator(logger)
	debateEngine := debate.NewEngine(orchestrator, roleOrch, cfg.Debate, cfg.Quality, logger)

	store := replay.NewInMemoryStore()
	evaluator := replay.NewLLMEvaluator(orchestrator, logger)
	replayEngine := replay.NewEngine(debateEngine, roleOrch, store, evaluator, cfg.Replay, cfg.CurrentSystemConfig, logger)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	handlers.NewDebateHandler(debateEngine, roleOrch).RegisterRoutes(v1)
	handlers.NewReplayHandler(replayEngine).RegisterRoutes(v1)
	handlers.NewMonitoringHandler(orchestrator).RegisterRoutes(v1)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Chain-of-Debate server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}

// buildProviderRegistry wires the three remote backends plus the local backup.
// All remote backends speak the chat-completions protocol through gateway URLs
// taken from the environment.
func buildProviderRegistry() *llm.Registry {
	registry := llm.NewRegistry()

	registry.Register(models.ProviderGPT4, &llm.OpenAICompatibleProvider{
		BaseURL:      envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:        envOr("OPENAI_MODEL", "gpt-4-turbo-preview"),
		CostPerToken: 0.00003,
		Confidence:   0.85,
	})
	registry.Register(models.ProviderClaude, &llm.OpenAICompatibleProvider{
		BaseURL:      envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
		APIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		Model:        envOr("ANTHROPIC_MODEL", "claude-3-sonnet-20240229"),
		CostPerToken: 0.000015,
		Confidence:   0.82,
	})
	registry.Register(models.ProviderGemini, &llm.OpenAICompatibleProvider{
		BaseURL:      envOr("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		APIKey:       os.Getenv("GOOGLE_API_KEY"),
		Model:        envOr("GOOGLE_MODEL", "gemini-pro"),
		CostPerToken: 0.000001,
		Confidence:   0.78,
	})
	registry.Register(models.ProviderLocalBackup, &llm.LocalBackupProvider{})

	return registry
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
