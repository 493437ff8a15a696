// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads harness settings from a TOML file and the
// environment.
//
// Precedence is defaults, then the file, then environment variables:
//
//	GG_TEST_TARGET  target filter, e.g. "software,native-gpu"
//	GG_TEST_OUTPUT  output directory, supports ${VAR:-default}
//	GG_HAL_BACKEND  HAL backend for native GPU targets ("vulkan", "noop")
//	GG_LOG_LEVEL    debug, info, warn or error
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/internal/imageio"
)

// Environment variables read by ApplyEnv.
const (
	EnvTarget   = "GG_TEST_TARGET"
	EnvOutput   = "GG_TEST_OUTPUT"
	EnvBackend  = "GG_HAL_BACKEND"
	EnvLogLevel = "GG_LOG_LEVEL"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config holds harness settings.
type Config struct {
	// Targets is the target filter; empty runs every target.
	Targets string `toml:"targets"`

	// Output is the directory images are written to; empty disables writing.
	Output string `toml:"output"`

	// Format is the image file extension: png, bmp or tiff.
	Format string `toml:"format"`

	LogLevel string `toml:"log_level"`

	Run      RunConfig      `toml:"run"`
	Software SoftwareConfig `toml:"software"`
	GPU      GPUConfig      `toml:"gpu"`
	Window   WindowConfig   `toml:"window"`
}

// RunConfig describes the surface every target is asked for.
type RunConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	// Mode is "test" or "perf".
	Mode string `toml:"mode"`
}

// SoftwareConfig configures the software targets.
type SoftwareConfig struct {
	// Workers is the raster pool size; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`
}

// GPUConfig configures the native GPU targets.
type GPUConfig struct {
	Backend         string `toml:"backend"`
	RequireHardware bool   `toml:"require_hardware"`
	Samples         uint32 `toml:"samples"`
}

// WindowConfig configures the window targets.
type WindowConfig struct {
	Samples int `toml:"samples"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:   "png",
		LogLevel: "warn",
		Run:      RunConfig{Width: 256, Height: 256, Mode: "test"},
		GPU:      GPUConfig{Backend: "vulkan", Samples: 4},
		Window:   WindowConfig{Samples: 4},
	}
}

// Load reads path over the defaults, applies the environment and
// validates the result. An empty path skips the file. Unknown keys in the
// file are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decoded(toml.DecodeFile(path, &cfg)); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults without consulting the
// environment. Like Load it rejects unknown keys.
func Parse(text string) (Config, error) {
	cfg := Default()
	if err := decoded(toml.Decode(text, &cfg)); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// decoded checks the outcome of a toml decode.
func decoded(md toml.MetaData, err error) error {
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
}

// ApplyEnv overrides settings from non-empty environment variables and
// expands variable references in Output.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTarget); v != "" {
		c.Targets = v
	}
	if v := getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := getenv(EnvBackend); v != "" {
		c.GPU.Backend = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	c.Output = Expand(c.Output, getenv)
}

// Validate checks enumerated fields and numeric ranges.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if _, err := imageio.FormatOf("x." + c.Format); err != nil {
		return fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
	}
	switch c.GPU.Backend {
	case "", "vulkan", "noop":
	default:
		return fmt.Errorf("%w: gpu backend %q", ErrInvalid, c.GPU.Backend)
	}
	if c.Software.Workers < 0 {
		return fmt.Errorf("%w: software workers %d", ErrInvalid, c.Software.Workers)
	}
	if c.Window.Samples < 0 {
		return fmt.Errorf("%w: window samples %d", ErrInvalid, c.Window.Samples)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Mode returns the request mode named by Run.Mode.
func (c Config) Mode() (harness.Mode, error) {
	switch c.Run.Mode {
	case "", "test":
		return harness.ModeTest, nil
	case "perf":
		return harness.ModePerf, nil
	}
	return 0, fmt.Errorf("%w: mode %q", ErrInvalid, c.Run.Mode)
}
