// Package config holds the emulator driver configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DecodeCacheConfig sizes the decoded-instruction cache.
type DecodeCacheConfig struct {
	// Enabled turns the cache on. Default: true.
	Enabled bool `json:"enabled"`

	// Sets is the number of cache sets. Default: 256.
	Sets int `json:"sets"`

	// Ways is the associativity. Default: 4.
	Ways int `json:"ways"`
}

// Config holds the settings for a run of the emulator.
type Config struct {
	// LoadAddress is where raw program images are placed. Default: 0x8000.
	LoadAddress uint32 `json:"load_address"`

	// EntryPoint overrides the program entry point when non-zero.
	EntryPoint uint32 `json:"entry_point"`

	// StackPointer overrides the initial SP when non-zero. Otherwise the
	// program image supplies it.
	StackPointer uint32 `json:"stack_pointer"`

	// MaxInstructions stops the run after this many instructions.
	// 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	// Trace prints each executed instruction.
	Trace bool `json:"trace"`

	// DecodeCache configures decoded-instruction memoization.
	DecodeCache DecodeCacheConfig `json:"decode_cache"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LoadAddress:     0x8000,
		EntryPoint:      0,
		StackPointer:    0,
		MaxInstructions: 0,
		Trace:           false,
		DecodeCache: DecodeCacheConfig{
			Enabled: true,
			Sets:    256,
			Ways:    4,
		},
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.LoadAddress%4 != 0 {
		return fmt.Errorf("load_address must be word aligned")
	}
	if c.EntryPoint%4 != 0 {
		return fmt.Errorf("entry_point must be word aligned")
	}
	if c.StackPointer%4 != 0 {
		return fmt.Errorf("stack_pointer must be word aligned")
	}
	if c.DecodeCache.Enabled {
		if c.DecodeCache.Sets <= 0 {
			return fmt.Errorf("decode_cache.sets must be > 0")
		}
		if c.DecodeCache.Ways <= 0 {
			return fmt.Errorf("decode_cache.ways must be > 0")
		}
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
