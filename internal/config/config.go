package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/session"
)

// DefaultMentorURL is the hosted Mentor prediction flow.
const DefaultMentorURL = "https://flowise-9kx9.onrender.com/api/v1/prediction/cef2a608-65a9-4813-a3a7-171a153c40b3"

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	Advisor AdvisorConfig
	Auth    AuthConfig
}

// Load reads the configuration from environment variables, applying the
// optional endpoint overlay file last.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	advisor, err := loadAdvisorConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Advisor: advisor, Auth: auth}, nil
}

// Warnings lists configuration that works but is probably not intended.
// Every binary logs them at startup.
func (c *Config) Warnings() []string {
	warnings := c.Advisor.Warnings()
	if !c.Auth.Enabled() {
		warnings = append(warnings, "AUTH_USERS not set, API is open to everyone")
	}
	return warnings
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Endpoint is one remote prediction flow.
type Endpoint struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Headers map[string]string
}

// AdvisorConfig describes the prediction endpoints and context assembly.
type AdvisorConfig struct {
	Endpoints        map[mode.Model]Endpoint
	ContextLimit     int
	IncludeWelcome   bool
	Welcome          string
	ExpertFromMentor bool
	EndpointsFile    string
}

// Endpoint returns the endpoint configured for model.
func (c AdvisorConfig) Endpoint(model mode.Model) (Endpoint, bool) {
	ep, ok := c.Endpoints[model]
	if !ok || ep.URL == "" {
		return Endpoint{}, false
	}
	return ep, true
}

// Warnings lists endpoint settings worth flagging to whoever runs the advisor.
func (c AdvisorConfig) Warnings() []string {
	if c.ExpertFromMentor {
		return []string{"ADVISOR_EXPERT_URL not set, expert turns go to the mentor endpoint"}
	}
	return nil
}

func loadAdvisorConfig() (AdvisorConfig, error) {
	timeout, err := parseDurationEnv("ADVISOR_TIMEOUT", 0)
	if err != nil {
		return AdvisorConfig{}, err
	}

	contextLimit := 5
	if override, err := parseOptionalIntEnv("ADVISOR_CONTEXT_LIMIT"); err != nil {
		return AdvisorConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return AdvisorConfig{}, fmt.Errorf("invalid ADVISOR_CONTEXT_LIMIT value %d: must not be negative", *override)
		}
		contextLimit = *override
	}

	includeWelcome, err := parseBoolEnv("ADVISOR_CONTEXT_INCLUDE_WELCOME", false)
	if err != nil {
		return AdvisorConfig{}, err
	}

	apiKey := strings.TrimSpace(os.Getenv("ADVISOR_API_KEY"))
	mentor := Endpoint{
		URL:     getEnvOrDefault("ADVISOR_MENTOR_URL", DefaultMentorURL),
		APIKey:  apiKey,
		Timeout: timeout,
	}

	expert := Endpoint{
		URL:     strings.TrimSpace(os.Getenv("ADVISOR_EXPERT_URL")),
		APIKey:  apiKey,
		Timeout: timeout,
	}

	cfg := AdvisorConfig{
		Endpoints: map[mode.Model]Endpoint{
			mode.Mentor: mentor,
			mode.Expert: expert,
		},
		ContextLimit:   contextLimit,
		IncludeWelcome: includeWelcome,
		Welcome:        getEnvOrDefault("ADVISOR_WELCOME", session.DefaultWelcome),
		EndpointsFile:  strings.TrimSpace(os.Getenv("ADVISOR_ENDPOINTS_FILE")),
	}

	if cfg.EndpointsFile != "" {
		if err := applyEndpointsFile(&cfg, cfg.EndpointsFile); err != nil {
			return AdvisorConfig{}, err
		}
	}
	resolveExpertFallback(&cfg)

	return cfg, nil
}

// resolveExpertFallback points an unconfigured Expert at the final Mentor URL.
// It runs after every override so the two never drift apart.
func resolveExpertFallback(cfg *AdvisorConfig) {
	expert := cfg.Endpoints[mode.Expert]
	if expert.URL != "" {
		cfg.ExpertFromMentor = false
		return
	}
	mentor := cfg.Endpoints[mode.Mentor]
	expert.URL = mentor.URL
	cfg.Endpoints[mode.Expert] = expert
	cfg.ExpertFromMentor = mentor.URL != ""
}

// AuthConfig describes the authentication gate. An empty Users map admits everyone.
type AuthConfig struct {
	Users map[string]string
	Realm string
}

// Enabled reports whether any credentials were configured.
func (c AuthConfig) Enabled() bool {
	return len(c.Users) > 0
}

func loadAuthConfig() (AuthConfig, error) {
	users, err := parseUsers(os.Getenv("AUTH_USERS"))
	if err != nil {
		return AuthConfig{}, err
	}
	return AuthConfig{
		Users: users,
		Realm: getEnvOrDefault("AUTH_REALM", "careerinfinance"),
	}, nil
}

// parseUsers reads "name:hash,name2:hash2". bcrypt hashes contain no commas.
func parseUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, hash, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		hash = strings.TrimSpace(hash)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid AUTH_USERS entry %q: want name:bcrypt-hash", entry)
		}
		users[name] = hash
	}
	return users, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}
