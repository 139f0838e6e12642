package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

//go:embed rules.yaml
var defaultRules []byte

// DefaultRules returns the built-in keyword lists.
func DefaultRules() (*domain.RuleConfig, error) {
	return parseRules(defaultRules)
}

// LoadRules reads keyword lists from path, or the built-in lists when path is empty.
// Lists omitted from the file keep their built-in values.
func LoadRules(path string) (*domain.RuleConfig, error) {
	cfg, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var override domain.RuleConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	merge(&cfg.SensitiveTechnologies, override.SensitiveTechnologies)
	merge(&cfg.AdminIndicators, override.AdminIndicators)
	merge(&cfg.PrivacyIndicators, override.PrivacyIndicators)
	merge(&cfg.CookieIndicators, override.CookieIndicators)
	merge(&cfg.CardKeywords, override.CardKeywords)
	return cfg, nil
}

func parseRules(data []byte) (*domain.RuleConfig, error) {
	var cfg domain.RuleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse built-in rules: %w", err)
	}
	return &cfg, nil
}

// merge replaces dst when src is present. An explicit empty list clears it.
func merge(dst *[]string, src []string) {
	if src == nil {
		return
	}
	out := make([]string, 0, len(src))
	for _, s := range src {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
