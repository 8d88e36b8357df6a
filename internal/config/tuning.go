// Package config loads the pipeline tuning file. Fields are pointer-typed
// so a partial JSON config is safe: anything omitted falls back to the
// compiled-in defaults via the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TuningConfig represents the root configuration for pipeline parameters.
type TuningConfig struct {
	// Source params
	FrameWidth  *int   `json:"frame_width,omitempty"`
	FrameHeight *int   `json:"frame_height,omitempty"`
	FrameRate   *int   `json:"frame_rate,omitempty"` // frames per second
	SourceSeed  *int64 `json:"source_seed,omitempty"`

	// Relay params
	RelayCapacity *int `json:"relay_capacity,omitempty"`

	// Detector params
	Pattern [][]uint8 `json:"pattern,omitempty"`

	// Run params
	RunDuration *string `json:"run_duration,omitempty"` // duration string like "30s"; empty = until signal
	Display     *bool   `json:"display,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields unset so every
// accessor falls through to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON retain their defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.FrameWidth != nil && *c.FrameWidth <= 0 {
		return fmt.Errorf("frame_width must be positive, got %d", *c.FrameWidth)
	}
	if c.FrameHeight != nil && *c.FrameHeight <= 0 {
		return fmt.Errorf("frame_height must be positive, got %d", *c.FrameHeight)
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", *c.FrameRate)
	}
	if c.RelayCapacity != nil && *c.RelayCapacity < 0 {
		return fmt.Errorf("relay_capacity must be non-negative, got %d", *c.RelayCapacity)
	}
	if c.RunDuration != nil && *c.RunDuration != "" {
		if _, err := time.ParseDuration(*c.RunDuration); err != nil {
			return fmt.Errorf("invalid run_duration '%s': %w", *c.RunDuration, err)
		}
	}
	if len(c.Pattern) > 0 {
		width := len(c.Pattern[0])
		if width == 0 {
			return fmt.Errorf("pattern rows must be non-empty")
		}
		for i, row := range c.Pattern {
			if len(row) != width {
				return fmt.Errorf("pattern row %d has %d columns, want %d", i, len(row), width)
			}
			for j, v := range row {
				if v > 1 {
					return fmt.Errorf("pattern cell (%d,%d) must be 0 or 1, got %d", i, j, v)
				}
			}
		}
	}
	return nil
}

// GetFrameWidth returns the frame_width value or the default.
func (c *TuningConfig) GetFrameWidth() int {
	if c.FrameWidth == nil {
		return 20
	}
	return *c.FrameWidth
}

// GetFrameHeight returns the frame_height value or the default.
func (c *TuningConfig) GetFrameHeight() int {
	if c.FrameHeight == nil {
		return 25
	}
	return *c.FrameHeight
}

// GetFrameRate returns the frame_rate value or the default.
func (c *TuningConfig) GetFrameRate() int {
	if c.FrameRate == nil {
		return 1
	}
	return *c.FrameRate
}

// GetSourceSeed returns the source_seed value or 0, which means seed from
// the clock.
func (c *TuningConfig) GetSourceSeed() int64 {
	if c.SourceSeed == nil {
		return 0
	}
	return *c.SourceSeed
}

// GetRelayCapacity returns the relay_capacity value or the default.
func (c *TuningConfig) GetRelayCapacity() int {
	if c.RelayCapacity == nil {
		return 1
	}
	return *c.RelayCapacity
}

// GetRunDuration parses and returns the run_duration as a time.Duration.
// Zero means run until interrupted.
func (c *TuningConfig) GetRunDuration() time.Duration {
	if c.RunDuration == nil || *c.RunDuration == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.RunDuration)
	if err != nil {
		return 0
	}
	return d
}

// GetDisplay returns the display value or the default.
func (c *TuningConfig) GetDisplay() bool {
	if c.Display == nil {
		return true
	}
	return *c.Display
}
