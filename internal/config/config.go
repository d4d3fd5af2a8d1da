// Package config loads recview configuration from JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/recview/pkg/recview"
	"github.com/calvinalkan/recview/pkg/recview/parallel"
)

// FileName is the project config file name.
const FileName = ".recview.json"

// Error variables for config loading.
var (
	ErrFileNotFound = errors.New("config file not found")
	ErrFileRead     = errors.New("cannot read config file")
	ErrInvalid      = errors.New("invalid config file")
)

// Config holds all configuration options.
type Config struct {
	// Workers caps parallel leaves. Zero means one per CPU.
	Workers int `json:"workers"`

	// MinChunk is the largest index range folded without splitting further.
	MinChunk int `json:"min_chunk"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level"`

	// DefaultOrder is the byte order used by gen when --order is not given.
	DefaultOrder string `json:"default_order"`

	// Resolved working directory (from -C flag or os.Getwd).
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics).
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// fileConfig is the serialized form. Pointers distinguish "unset" from an
// explicit zero.
type fileConfig struct {
	Workers      *int    `json:"workers"`
	MinChunk     *int    `json:"min_chunk"`
	LogLevel     *string `json:"log_level"`
	DefaultOrder *string `json:"default_order"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Workers:      0,
		MinChunk:     parallel.DefaultMinChunk,
		LogLevel:     logrus.InfoLevel.String(),
		DefaultOrder: recview.LittleEndian.String(),
	}
}

// Overrides holds values from CLI flags. Nil or empty fields are not applied.
type Overrides struct {
	Workers  *int
	LogLevel string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir    string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath string            // -c/--config flag value
	Overrides  Overrides         // CLI overrides
	Env        map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/recview/config.json or $XDG_CONFIG_HOME/recview/config.json)
// 3. Project config file at default location (.recview.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if globalPath := globalConfigPath(input.Env); globalPath != "" {
		fc, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fc)
			cfg.Sources.Global = globalPath
		}
	}

	projectPath := filepath.Join(workDir, FileName)

	fc, loaded, err := loadFile(projectPath, false)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, fc)
		cfg.Sources.Project = projectPath
	}

	if input.ConfigPath != "" {
		explicitPath := input.ConfigPath
		if !filepath.IsAbs(explicitPath) {
			explicitPath = filepath.Join(workDir, explicitPath)
		}

		fc, _, err := loadFile(explicitPath, true)
		if err != nil {
			return Config{}, err
		}

		cfg = merge(cfg, fc)
		cfg.Sources.Project = explicitPath
	}

	if input.Overrides.Workers != nil {
		cfg.Workers = *input.Overrides.Workers
	}

	if input.Overrides.LogLevel != "" {
		cfg.LogLevel = input.Overrides.LogLevel
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	return cfg, nil
}

// ParallelOptions returns the driver options described by cfg.
func (c Config) ParallelOptions() parallel.Options {
	return parallel.Options{Workers: c.Workers, MinChunk: c.MinChunk}
}

// Order returns the parsed default byte order.
func (c Config) Order() recview.Endian {
	order, err := recview.ParseEndian(c.DefaultOrder)
	if err != nil {
		return recview.LittleEndian
	}

	return order
}

// Level returns the parsed log level.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}

	return level
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/recview/config.json if set, otherwise ~/.config/recview/config.json.
// Returns empty string if home directory cannot be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "recview", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "recview", "config.json")
	}

	return ""
}

// loadFile loads a config file. If mustExist is false, a missing file is not an error.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
	}

	fc, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	return fc, true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig

	err = json.Unmarshal(standardized, &fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return fc, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.Workers != nil {
		base.Workers = *overlay.Workers
	}

	if overlay.MinChunk != nil {
		base.MinChunk = *overlay.MinChunk
	}

	if overlay.LogLevel != nil {
		base.LogLevel = *overlay.LogLevel
	}

	if overlay.DefaultOrder != nil {
		base.DefaultOrder = *overlay.DefaultOrder
	}

	return base
}

func validate(cfg Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalid, cfg.Workers)
	}

	if cfg.MinChunk < 1 {
		return fmt.Errorf("%w: min_chunk must be >= 1, got %d", ErrInvalid, cfg.MinChunk)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}

	if _, err := recview.ParseEndian(cfg.DefaultOrder); err != nil {
		return fmt.Errorf("%w: default_order: %w", ErrInvalid, err)
	}

	return nil
}
