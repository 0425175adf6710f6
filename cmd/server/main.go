// Command server runs the question-answering HTTP backend. The vector
// store is loaded once at startup; any load or validation failure aborts
// before serving begins.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rag-assistant/internal/config"
	"rag-assistant/internal/domain"
	embgemini "rag-assistant/internal/embedding/gemini"
	embopenai "rag-assistant/internal/embedding/openai"
	gengemini "rag-assistant/internal/generation/gemini"
	"rag-assistant/internal/pipeline"
	"rag-assistant/internal/server"
	"rag-assistant/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var debug bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	logger := newLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("failed to init embedder", "error", err)
		os.Exit(1)
	}
	generator, err := gengemini.New(ctx, gengemini.Config{
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
	})
	if err != nil {
		logger.Error("failed to init generator", "error", err)
		os.Exit(1)
	}

	store, err := vectorstore.Load(cfg.Paths.Store, embedder.Name())
	if err != nil {
		logger.Error("failed to load vector store", "error", err)
		os.Exit(1)
	}
	logger.Info("vector store loaded",
		"chunks", len(store.Chunks),
		"dimension", store.Dimension,
		"model", store.EmbeddingModel)

	p, err := pipeline.New(store, embedder, generator, pipeline.Options{
		TopK:            cfg.Retrieval.TopK,
		AcceptThreshold: cfg.Retrieval.AcceptThreshold,
		GenTimeout:      time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv := server.New(p, cfg.Server.AllowedOrigins, logger)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newEmbedder(ctx context.Context, cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai":
		return embopenai.New(embopenai.Config{
			Model:     cfg.Embedder.Model,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
		})
	default:
		return embgemini.New(ctx, embgemini.Config{
			Model:     cfg.Embedder.Model,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
		})
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
