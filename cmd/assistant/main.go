// Command assistant is an interactive terminal chat client. It runs the
// same retrieval pipeline as the server, in-process against the same
// vector store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"rag-assistant/internal/config"
	"rag-assistant/internal/domain"
	embgemini "rag-assistant/internal/embedding/gemini"
	embopenai "rag-assistant/internal/embedding/openai"
	gengemini "rag-assistant/internal/generation/gemini"
	"rag-assistant/internal/pipeline"
	"rag-assistant/internal/tui"
	"rag-assistant/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.Parse()

	// Keep slog quiet; the TUI owns the terminal.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	var embedder domain.Embedder
	switch cfg.Embedder.Type {
	case "openai":
		embedder, err = embopenai.New(embopenai.Config{
			Model:     cfg.Embedder.Model,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
		})
	default:
		embedder, err = embgemini.New(ctx, embgemini.Config{
			Model:     cfg.Embedder.Model,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
		})
	}
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	generator, err := gengemini.New(ctx, gengemini.Config{
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	store, err := vectorstore.Load(cfg.Paths.Store, embedder.Name())
	if err != nil {
		log.Fatalf("vector store load failed: %v", err)
	}

	p, err := pipeline.New(store, embedder, generator, pipeline.Options{
		TopK:            cfg.Retrieval.TopK,
		AcceptThreshold: cfg.Retrieval.AcceptThreshold,
		GenTimeout:      time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}, nil)
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}

	summary := storeSummary(store)
	m := tui.New(p, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func storeSummary(store *vectorstore.Store) string {
	titles := make([]string, 0, 4)
	seen := map[string]struct{}{}
	for _, c := range store.Chunks {
		if _, ok := seen[c.DocID]; ok {
			continue
		}
		seen[c.DocID] = struct{}{}
		titles = append(titles, c.Title)
	}
	return fmt.Sprintf("%d chunk(s) from: %s", len(store.Chunks), strings.Join(titles, ", "))
}
