package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents sigforge's on-disk configuration.
type Config struct {
	// Generator settings
	Generator struct {
		MinLength           int  `toml:"min_length"`
		MaxLength           int  `toml:"max_length"`
		Variants            int  `toml:"variants"`
		ContextBefore       int  `toml:"context_before"`
		ContextAfter        int  `toml:"context_after"`
		DefaultStrategy     string `toml:"default_strategy"`
		RelativeJumps       bool `toml:"wildcard_relative_jumps"`
		RelativeCalls       bool `toml:"wildcard_relative_calls"`
		StackOffsets        bool `toml:"wildcard_stack_offsets"`
		GlobalAddresses     bool `toml:"wildcard_global_addresses"`
		Immediates          bool `toml:"wildcard_immediates"`
		StructOffsets       bool `toml:"wildcard_struct_offsets"`
		MemoryDisplacements bool `toml:"wildcard_memory_displacements"`
	} `toml:"generator"`

	// SmartAnalyzer settings
	SmartAnalyzer struct {
		TopAnchors int `toml:"top_anchors"`
	} `toml:"smart_analyzer"`

	// Export settings
	Export struct {
		DefaultFormat string `toml:"default_format"`
	} `toml:"export"`

	// Parser settings
	Parser struct {
		DefaultFormatHint string `toml:"default_format_hint"`
	} `toml:"parser"`
}

// DefaultConfig returns a configuration with the generator's documented
// default options.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Generator.MinLength = 20
	cfg.Generator.MaxLength = 50
	cfg.Generator.Variants = 10
	cfg.Generator.ContextBefore = 0
	cfg.Generator.ContextAfter = 10
	cfg.Generator.DefaultStrategy = "balanced"
	cfg.Generator.RelativeJumps = true
	cfg.Generator.RelativeCalls = true
	cfg.Generator.StackOffsets = true
	cfg.Generator.GlobalAddresses = true

	cfg.SmartAnalyzer.TopAnchors = 5

	cfg.Export.DefaultFormat = "aob"

	cfg.Parser.DefaultFormatHint = "auto"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "sigforge")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "sigforge")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: the caller gets the documented defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
