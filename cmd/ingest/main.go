// Command ingest rebuilds the vector store from the raw document set.
// Ingestion is always a full rebuild: the existing store file is replaced
// atomically once the whole batch has embedded successfully.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"rag-assistant/internal/config"
	"rag-assistant/internal/domain"
	"rag-assistant/internal/embedding/gemini"
	"rag-assistant/internal/embedding/openai"
	"rag-assistant/internal/ingest"
	"rag-assistant/internal/summarizer"
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

	ctx := context.Background()
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("failed to init embedder", "error", err)
		os.Exit(1)
	}

	docs, err := ingest.LoadDocuments(cfg.Paths.Docs)
	if err != nil {
		logger.Error("failed to load documents", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded documents", "count", len(docs), "path", cfg.Paths.Docs)

	ing := ingest.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap, embedder, logger)
	chunks, err := ing.Run(ctx, docs)
	if err != nil {
		logger.Error("ingestion failed, nothing written", "error", err)
		os.Exit(1)
	}

	if err := vectorstore.Save(cfg.Paths.Store, embedder.Name(), chunks); err != nil {
		logger.Error("failed to save vector store", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"chunks", len(chunks),
		"dimension", len(chunks[0].Vector),
		"model", embedder.Name(),
		"store", cfg.Paths.Store)

	fmt.Println(summarizer.New().SummarizeCorpus(docs, 3))
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
		return openai.New(openai.Config{
			Model:     cfg.Embedder.Model,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
		})
	default:
		return gemini.New(ctx, gemini.Config{
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
