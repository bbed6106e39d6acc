package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kidlingo-service/internal/auth"
)

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  secret: cli-secret\n  issuer: kidlingo\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "token", "kid-1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	id, err := auth.NewTokens("cli-secret", "kidlingo", time.Hour).Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Principal != "kid-1" {
		t.Fatalf("expected kid-1, got %q", id.Principal)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "token", "kid-1"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error without secret")
	}
}
