package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const rulesFile = "rules.yaml"

// LoadRules loads the turn resolution rules.
// Search order: customPath -> ~/.antfarm/rules.yaml -> ./configs/rules.yaml -> embedded default
func LoadRules(customPath string) (Rules, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Rules{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseRules(data)
		if err != nil {
			return Rules{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(rulesFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseRules(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", rulesFile)); err == nil {
		if cfg, err := ParseRules(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseRules(defaultRulesYAML)
	if err != nil {
		return DefaultRules(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseRules decodes YAML on top of the hardcoded defaults, so a partial
// file only overrides what it names, then validates the result.
func ParseRules(data []byte) (Rules, error) {
	cfg := DefaultRules()
	// A file that names spawn tables replaces the whole set.
	var raw struct {
		Spawn map[string][]SpawnChance `yaml:"spawn"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Rules{}, err
	}
	if raw.Spawn != nil {
		cfg.Spawn = nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Rules{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Rules{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".antfarm", filename)
}

// MarshalRules encodes every rule value, so ParseRules of the result yields
// rules equal to r regardless of the defaults of the reading build.
func MarshalRules(r Rules) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("config: encode rules: %w", err)
	}
	return data, nil
}
