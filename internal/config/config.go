package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Interview InterviewConfig `yaml:"interview"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	APIToken string `yaml:"api_token"`
	MaxConns int    `yaml:"max_conns"`
}

type LLMConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	TranscribeModel string `yaml:"transcribe_model"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type InterviewConfig struct {
	SoftLimit     int `yaml:"soft_limit"`
	MinStandalone int `yaml:"min_standalone"`
	MinFollowUp   int `yaml:"min_follow_up"`
}

type JobsConfig struct {
	CatalogPath string `yaml:"catalog_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name onto slog. Unknown names
// fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:     8000,
			MaxConns: 256,
		},
		LLM: LLMConfig{
			BaseURL:         "https://api.openai.com",
			Model:           "gpt-4o-mini",
			TranscribeModel: "whisper-1",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Interview: InterviewConfig{
			SoftLimit:     10,
			MinStandalone: 6,
			MinFollowUp:   2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".interviewd"
	}
	return filepath.Join(home, ".interviewd")
}

// Load builds the configuration in layers: built-in defaults, then a
// .env file (for local development), then the YAML config file, then
// INTERVIEWD_* environment variables. Later layers win.
//
// Both file paths are optional; a missing .env is ignored, an empty
// configPath skips the YAML layer entirely.
func Load(configPath, dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		// Missing .env is the normal case outside development.
		_ = godotenv.Load(dotenvPath)
	}

	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("missing required config: LLM API key. Set it via environment variable INTERVIEWD_LLM_API_KEY or llm.api_key in the config file")
	}
	if cfg.Interview.SoftLimit <= 0 || cfg.Interview.MinStandalone < 0 || cfg.Interview.MinFollowUp < 0 {
		return fmt.Errorf("invalid interview policy: soft_limit must be positive, minimums must be non-negative")
	}
	if cfg.Interview.MinStandalone+cfg.Interview.MinFollowUp > cfg.Interview.SoftLimit {
		return fmt.Errorf("invalid interview policy: min_standalone (%d) + min_follow_up (%d) exceeds soft_limit (%d), so every interview would overshoot the limit",
			cfg.Interview.MinStandalone, cfg.Interview.MinFollowUp, cfg.Interview.SoftLimit)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	return nil
}
