package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/session"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ADVISOR_MENTOR_URL", "ADVISOR_EXPERT_URL", "ADVISOR_API_KEY",
		"ADVISOR_TIMEOUT", "ADVISOR_CONTEXT_LIMIT", "ADVISOR_CONTEXT_INCLUDE_WELCOME",
		"ADVISOR_WELCOME", "ADVISOR_ENDPOINTS_FILE", "AUTH_USERS", "AUTH_REALM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Advisor.ContextLimit != 5 {
		t.Fatalf("expected context limit 5, got %d", cfg.Advisor.ContextLimit)
	}
	if cfg.Advisor.IncludeWelcome {
		t.Fatal("expected welcome excluded from context by default")
	}
	if cfg.Advisor.Welcome != session.DefaultWelcome {
		t.Fatalf("unexpected welcome %q", cfg.Advisor.Welcome)
	}
	mentor, ok := cfg.Advisor.Endpoint(mode.Mentor)
	if !ok || mentor.URL != DefaultMentorURL || mentor.Timeout != 0 {
		t.Fatalf("unexpected mentor endpoint: %+v", mentor)
	}
	if !cfg.Advisor.ExpertFromMentor {
		t.Fatal("expected expert endpoint to default to mentor")
	}
	if cfg.Auth.Enabled() {
		t.Fatal("expected auth gate disabled without AUTH_USERS")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ADVISOR_EXPERT_URL", "https://expert.example.com/predict")
	t.Setenv("ADVISOR_TIMEOUT", "45s")
	t.Setenv("ADVISOR_CONTEXT_LIMIT", "3")
	t.Setenv("ADVISOR_CONTEXT_INCLUDE_WELCOME", "true")
	t.Setenv("AUTH_USERS", "alice:$2a$10$abc, bob:$2a$10$def")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %s", cfg.Server.Addr)
	}
	expert, ok := cfg.Advisor.Endpoint(mode.Expert)
	if !ok || expert.URL != "https://expert.example.com/predict" {
		t.Fatalf("unexpected expert endpoint: %+v", expert)
	}
	if expert.Timeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", expert.Timeout)
	}
	if cfg.Advisor.ExpertFromMentor {
		t.Fatal("expert endpoint was configured explicitly")
	}
	if cfg.Advisor.ContextLimit != 3 || !cfg.Advisor.IncludeWelcome {
		t.Fatalf("unexpected context settings: %+v", cfg.Advisor)
	}
	if len(cfg.Auth.Users) != 2 || cfg.Auth.Users["bob"] != "$2a$10$def" {
		t.Fatalf("unexpected users: %+v", cfg.Auth.Users)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                            "80 80",
		"ADVISOR_TIMEOUT":                 "soon",
		"ADVISOR_CONTEXT_LIMIT":           "-1",
		"ADVISOR_CONTEXT_INCLUDE_WELCOME": "maybe",
		"AUTH_USERS":                      "alice",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestEndpointsFileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	doc := `endpoints:
  expert:
    url: https://flowise.example.com/api/v1/prediction/expert
    timeout: 2m
    headers:
      X-Team: careers
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("ADVISOR_ENDPOINTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	expert, _ := cfg.Advisor.Endpoint(mode.Expert)
	if expert.URL != "https://flowise.example.com/api/v1/prediction/expert" {
		t.Fatalf("unexpected expert url %s", expert.URL)
	}
	if expert.Timeout != 2*time.Minute || expert.Headers["X-Team"] != "careers" {
		t.Fatalf("unexpected expert endpoint: %+v", expert)
	}
	if cfg.Advisor.ExpertFromMentor {
		t.Fatal("overlay should mark expert as explicitly configured")
	}
	mentor, _ := cfg.Advisor.Endpoint(mode.Mentor)
	if mentor.URL != DefaultMentorURL {
		t.Fatalf("mentor should be untouched, got %s", mentor.URL)
	}
}

func TestEndpointsFileMentorOnlyMovesExpertFallback(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	doc := `endpoints:
  mentor:
    url: https://new.example/mentor
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("ADVISOR_ENDPOINTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	mentor, _ := cfg.Advisor.Endpoint(mode.Mentor)
	expert, _ := cfg.Advisor.Endpoint(mode.Expert)
	if mentor.URL != "https://new.example/mentor" {
		t.Fatalf("unexpected mentor url %s", mentor.URL)
	}
	if expert.URL != mentor.URL {
		t.Fatalf("expert should follow the overlaid mentor url, got %s", expert.URL)
	}
	if !cfg.Advisor.ExpertFromMentor {
		t.Fatal("expected expert to be reported as falling back to mentor")
	}
}

func TestEnvExpertURLSurvivesMentorOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADVISOR_EXPERT_URL", "https://expert.example.com/predict")
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(path, []byte("endpoints:\n  mentor:\n    url: https://new.example/mentor\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("ADVISOR_ENDPOINTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	expert, _ := cfg.Advisor.Endpoint(mode.Expert)
	if expert.URL != "https://expert.example.com/predict" || cfg.Advisor.ExpertFromMentor {
		t.Fatalf("unexpected expert endpoint %+v (fromMentor=%v)", expert, cfg.Advisor.ExpertFromMentor)
	}
}

func TestEndpointsFileRejectsUnknownModel(t *testing.T) {
	cfg := AdvisorConfig{}
	err := applyEndpointsYAML(&cfg, []byte("endpoints:\n  oracle:\n    url: http://x\n"))
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestWarnings(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if got := cfg.Advisor.Warnings(); len(got) != 1 || !strings.Contains(got[0], "ADVISOR_EXPERT_URL") {
		t.Fatalf("expected expert fallback warning, got %v", got)
	}
	if got := cfg.Warnings(); len(got) != 2 {
		t.Fatalf("expected expert and auth warnings, got %v", got)
	}

	t.Setenv("ADVISOR_EXPERT_URL", "https://expert.example.com/predict")
	t.Setenv("AUTH_USERS", "alice:$2a$10$abcdefghijklmnopqrstuv")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if got := cfg.Warnings(); len(got) != 0 {
		t.Fatalf("expected no warnings, got %v", got)
	}
}
