package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
quiz:
  questionLimit: 3
  pointsPerCorrect: 20
  feedbackDelay: 500ms
auth:
  secret: s3cret
  admins: ["coach-1"]
log:
  level: debug
  env: development
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Quiz.QuestionLimit != 3 || cfg.Quiz.PointsPerCorrect != 20 {
		t.Fatalf("unexpected quiz section: %+v", cfg.Quiz)
	}
	if len(cfg.Auth.Admins) != 1 || cfg.Auth.Admins[0] != "coach-1" {
		t.Fatalf("unexpected admins: %v", cfg.Auth.Admins)
	}
	if d := TTLDuration(cfg.Quiz.FeedbackDelay, time.Second); d != 500*time.Millisecond {
		t.Fatalf("expected 500ms feedback delay, got %v", d)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.QuestionLimit != 0 {
		t.Fatalf("expected zero question limit, got %d", cfg.Quiz.QuestionLimit)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for log level")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("nonsense", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
}
