package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rag-assistant/internal/domain"
)

// ChunkingConfig configures how document text is split into word windows.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig configures ranking and the confidence gate. The accept
// threshold is the single threshold used end-to-end: the ranker filters
// with it and the pipeline gates on it.
type RetrievalConfig struct {
	TopK            int     `yaml:"top_k"`
	AcceptThreshold float64 `yaml:"accept_threshold"`
}

// EmbedderConfig selects and configures the embedding capability.
type EmbedderConfig struct {
	Type      string `yaml:"type"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// GeneratorConfig configures the text-generation capability.
type GeneratorConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	APIKeyEnv   string  `yaml:"api_key_env"`
}

// ServerConfig configures the thin HTTP layer.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PathsConfig locates the ingestion input and the persisted vector store.
type PathsConfig struct {
	Docs  string `yaml:"docs"`
	Store string `yaml:"store"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then
// ~/.config/rag-assistant/config.yaml. If neither exists, it writes
// defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate fails fast on configurations that would otherwise surface as
// broken behavior at first request: a non-advancing chunk window, an
// out-of-range threshold, or a nonsensical generation setup.
func (cfg *AppConfig) Validate() error {
	if cfg.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunking.chunk_size must be positive, got %d", domain.ErrInvalidConfig, cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunking.overlap must be non-negative, got %d", domain.ErrInvalidConfig, cfg.Chunking.Overlap)
	}
	if cfg.Chunking.Overlap >= cfg.Chunking.ChunkSize {
		return fmt.Errorf("%w: chunking.overlap %d must be less than chunking.chunk_size %d",
			domain.ErrInvalidConfig, cfg.Chunking.Overlap, cfg.Chunking.ChunkSize)
	}
	if cfg.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive, got %d", domain.ErrInvalidConfig, cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.AcceptThreshold < -1 || cfg.Retrieval.AcceptThreshold > 1 {
		return fmt.Errorf("%w: retrieval.accept_threshold must be within [-1, 1], got %g",
			domain.ErrInvalidConfig, cfg.Retrieval.AcceptThreshold)
	}
	switch cfg.Embedder.Type {
	case "gemini", "openai":
	default:
		return fmt.Errorf("%w: unknown embedder.type %q", domain.ErrInvalidConfig, cfg.Embedder.Type)
	}
	if cfg.Generator.Temperature < 0 {
		return fmt.Errorf("%w: generator.temperature must be non-negative, got %g",
			domain.ErrInvalidConfig, cfg.Generator.Temperature)
	}
	if cfg.Generator.TimeoutSecs <= 0 {
		return fmt.Errorf("%w: generator.timeout_secs must be positive, got %d",
			domain.ErrInvalidConfig, cfg.Generator.TimeoutSecs)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rag-assistant", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 400
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 50
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.AcceptThreshold == 0 {
		cfg.Retrieval.AcceptThreshold = 0.45
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.Model == "" {
		switch cfg.Embedder.Type {
		case "openai":
			cfg.Embedder.Model = "text-embedding-3-small"
		default:
			cfg.Embedder.Model = "gemini-embedding-001"
		}
	}
	if cfg.Embedder.APIKeyEnv == "" {
		switch cfg.Embedder.Type {
		case "openai":
			cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
		default:
			cfg.Embedder.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gemini-2.5-flash"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.2
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:3001"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Paths.Docs == "" {
		cfg.Paths.Docs = "data/docs.json"
	}
	if cfg.Paths.Store == "" {
		cfg.Paths.Store = "data/vector_store.json"
	}
}
