package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
		os.Unsetenv(s.env)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEWD_LLM_API_KEY", "sk-test")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.TranscribeModel != "whisper-1" {
		t.Errorf("TranscribeModel = %q", cfg.LLM.TranscribeModel)
	}
	if cfg.Interview.SoftLimit != 10 || cfg.Interview.MinStandalone != 6 || cfg.Interview.MinFollowUp != 2 {
		t.Errorf("Interview = %+v", cfg.Interview)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load("", "")
	if err == nil {
		t.Fatal("Load succeeded without API key")
	}
	if !strings.Contains(err.Error(), "INTERVIEWD_LLM_API_KEY") {
		t.Errorf("error %q should mention the env var", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEWD_LLM_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
llm:
  model: gpt-4o
interview:
  soft_limit: 12
  min_standalone: 7
  min_follow_up: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.LLM.Model)
	}
	if cfg.Interview.SoftLimit != 12 {
		t.Errorf("SoftLimit = %d, want 12", cfg.Interview.SoftLimit)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LLM.TranscribeModel != "whisper-1" {
		t.Errorf("TranscribeModel = %q, want default", cfg.LLM.TranscribeModel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEWD_LLM_API_KEY", "sk-test")
	t.Setenv("INTERVIEWD_SERVER_PORT", "9999")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, env should override file", cfg.Server.Port)
	}
}

func TestDotenvFile(t *testing.T) {
	clearEnv(t)

	dotenv := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(dotenv, []byte("INTERVIEWD_LLM_API_KEY=sk-from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}

	cfg, err := Load("", dotenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-dotenv" {
		t.Errorf("APIKey = %q, want value from .env", cfg.LLM.APIKey)
	}
}

func TestInvalidPolicyRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEWD_LLM_API_KEY", "sk-test")
	t.Setenv("INTERVIEWD_INTERVIEW_SOFT_LIMIT", "5")
	t.Setenv("INTERVIEWD_INTERVIEW_MIN_STANDALONE", "6")

	_, err := Load("", "")
	if err == nil {
		t.Fatal("Load accepted unreachable policy")
	}
	if !strings.Contains(err.Error(), "soft_limit") {
		t.Errorf("error = %q", err)
	}
}

func TestInvalidIntEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVIEWD_LLM_API_KEY", "sk-test")
	t.Setenv("INTERVIEWD_SERVER_PORT", "not-a-number")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := (LogConfig{Level: tc.name}).SlogLevel(); got != tc.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
