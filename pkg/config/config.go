package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// ConfidenceScores holds the tunable confidence constants used by the diff
// parser. The defaults are starting points, not load-bearing values; they
// should be re-tuned against real model output.
type ConfidenceScores struct {
	FencedBlock   float64 `json:"fenced_block"`
	SearchReplace float64 `json:"search_replace"`
	InlineChange  float64 `json:"inline_change"`
	UnifiedDiff   float64 `json:"unified_diff"`
	ApplyFloor    float64 `json:"apply_floor"`
}

// Config carries the runtime settings for the generation pipeline.
type Config struct {
	MaxAttempts         int              `json:"max_attempts"`
	MaxSimpleFixRetries int              `json:"max_simple_fix_retries"`
	BackoffMultiplier   float64          `json:"backoff_multiplier"`
	Confidence          ConfidenceScores `json:"confidence"`
	MaxSampledFiles     int              `json:"max_sampled_files"`
	MaxPathLength       int              `json:"max_path_length"`
	RuleProfileOverlay  string           `json:"rule_profile_overlay"`
	EchoSteps           bool             `json:"-"` // command-scoped, not persisted
}

// DefaultConfig returns a config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:         3,
		MaxSimpleFixRetries: 2,
		BackoffMultiplier:   1.5,
		Confidence: ConfidenceScores{
			FencedBlock:   0.65,
			SearchReplace: 0.9,
			InlineChange:  0.75,
			UnifiedDiff:   0.85,
			ApplyFloor:    0.6,
		},
		MaxSampledFiles: 20,
		MaxPathLength:   200,
	}
}

// configPath returns the location of the persisted config under the given
// project root.
func configPath(rootDir string) string {
	return filepath.Join(rootDir, ".lassist", "config.json")
}

// Load reads the config file from the project root, falling back to
// defaults when the file does not exist. A malformed file is an error, not
// a silent fallback.
func Load(rootDir string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath(rootDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, workspace.NewConfigError(configPath(rootDir), err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, workspace.NewConfigError(configPath(rootDir), err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config back to the project root.
func (c *Config) Save(rootDir string) error {
	dir := filepath.Dir(configPath(rootDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return workspace.NewFileSystemError("mkdir", dir, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return workspace.NewConfigError("marshal", err)
	}
	if err := os.WriteFile(configPath(rootDir), data, 0644); err != nil {
		return workspace.NewFileSystemError("write", configPath(rootDir), err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return workspace.NewConfigError("max_attempts", fmt.Errorf("must be at least 1, got %d", c.MaxAttempts))
	}
	if c.MaxSimpleFixRetries < 0 {
		return workspace.NewConfigError("max_simple_fix_retries", fmt.Errorf("must not be negative, got %d", c.MaxSimpleFixRetries))
	}
	if c.Confidence.ApplyFloor < 0 || c.Confidence.ApplyFloor > 1 {
		return workspace.NewConfigError("confidence.apply_floor", fmt.Errorf("must be in [0,1], got %f", c.Confidence.ApplyFloor))
	}
	return nil
}
