package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesGeneratorDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Generator.MinLength != 20 || cfg.Generator.MaxLength != 50 {
		t.Errorf("unexpected length bounds: %d/%d", cfg.Generator.MinLength, cfg.Generator.MaxLength)
	}
	if cfg.Generator.Variants != 10 {
		t.Errorf("Variants = %d, want 10", cfg.Generator.Variants)
	}
	if !cfg.Generator.RelativeJumps || !cfg.Generator.StackOffsets {
		t.Error("expected relative_jumps and stack_offsets enabled by default")
	}
	if cfg.Generator.Immediates {
		t.Error("expected immediates disabled by default")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Generator.MaxLength != 50 {
		t.Errorf("expected default config on missing file, got MaxLength=%d", cfg.Generator.MaxLength)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Generator.Variants = 25
	cfg.Export.DefaultFormat = "ida"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Generator.Variants != 25 {
		t.Errorf("Variants = %d, want 25", loaded.Generator.Variants)
	}
	if loaded.Export.DefaultFormat != "ida" {
		t.Errorf("DefaultFormat = %q, want ida", loaded.Export.DefaultFormat)
	}
}
