package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfidenceOrdering(t *testing.T) {
	cfg := DefaultConfig()

	// The cascade's trust ordering: explicit forms beat inferred ones.
	if cfg.Confidence.SearchReplace <= cfg.Confidence.UnifiedDiff {
		t.Error("search/replace should outrank unified diff")
	}
	if cfg.Confidence.UnifiedDiff <= cfg.Confidence.InlineChange {
		t.Error("unified diff should outrank inline changes")
	}
	if cfg.Confidence.InlineChange <= cfg.Confidence.FencedBlock {
		t.Error("inline changes should outrank fenced blocks")
	}
	if cfg.Confidence.FencedBlock <= cfg.Confidence.ApplyFloor {
		t.Error("fenced blocks must clear the apply floor by default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.MaxAttempts != 3 || cfg.MaxSimpleFixRetries != 2 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".lassist"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".lassist", "config.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("malformed config loaded without error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	cfg.Confidence.ApplyFloor = 0.75
	cfg.RuleProfileOverlay = "profiles.yaml"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", loaded.MaxAttempts)
	}
	if loaded.Confidence.ApplyFloor != 0.75 {
		t.Errorf("apply floor = %f, want 0.75", loaded.Confidence.ApplyFloor)
	}
	if loaded.RuleProfileOverlay != "profiles.yaml" {
		t.Errorf("overlay = %q", loaded.RuleProfileOverlay)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.MaxAttempts = 0
	if err := cfg.Save(root); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("config with zero max attempts loaded without error")
	}
}
