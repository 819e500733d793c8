package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
)

// endpointsFile is the YAML overlay for prediction endpoints:
//
//	endpoints:
//	  mentor:
//	    url: https://flowise.example.com/api/v1/prediction/<id>
//	    timeout: 90s
//	    headers:
//	      X-Team: careers
//	  expert:
//	    url: https://flowise.example.com/api/v1/prediction/<id>
type endpointsFile struct {
	Endpoints map[string]endpointEntry `yaml:"endpoints"`
}

type endpointEntry struct {
	URL     string            `yaml:"url"`
	APIKey  string            `yaml:"api_key"`
	Timeout string            `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

func applyEndpointsFile(cfg *AdvisorConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read endpoints file: %w", err)
	}
	return applyEndpointsYAML(cfg, data)
}

// applyEndpointsYAML overrides only the fields the document sets.
func applyEndpointsYAML(cfg *AdvisorConfig, data []byte) error {
	var doc endpointsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse endpoints file: %w", err)
	}

	for name, entry := range doc.Endpoints {
		model, err := mode.ParseModel(name)
		if err != nil {
			return fmt.Errorf("endpoints file: %w", err)
		}

		ep := cfg.Endpoints[model]
		if url := strings.TrimSpace(entry.URL); url != "" {
			ep.URL = url
		}
		if key := strings.TrimSpace(entry.APIKey); key != "" {
			ep.APIKey = key
		}
		if raw := strings.TrimSpace(entry.Timeout); raw != "" {
			timeout, err := time.ParseDuration(raw)
			if err != nil || timeout < 0 {
				return fmt.Errorf("endpoints file: invalid timeout %q for %s", raw, model)
			}
			ep.Timeout = timeout
		}
		if len(entry.Headers) > 0 {
			ep.Headers = make(map[string]string, len(entry.Headers))
			for k, v := range entry.Headers {
				ep.Headers[k] = v
			}
		}

		if cfg.Endpoints == nil {
			cfg.Endpoints = make(map[mode.Model]Endpoint)
		}
		cfg.Endpoints[model] = ep
	}
	return nil
}
