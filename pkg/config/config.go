package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/frustumcull/batchgen/pkg/batch"
	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML configuration file. Pointer fields distinguish
// "unset" from an explicit zero value so presets are only overridden on
// purpose.
type Config struct {
	Preset          string          `yaml:"preset"`
	PrimInLeafCount *int            `yaml:"primInLeafCount"`
	Executable      string          `yaml:"executable"`
	StatsFilePath   *string         `yaml:"statsFilePath"`
	SceneDir        string          `yaml:"sceneDir"`
	ViewNames       []string        `yaml:"viewNames"`
	Variants        []batch.Variant `yaml:"variants"`

	// Positional form kept for configs written against the original
	// script. Both lists must have the same length.
	NoOptimFlags        []string `yaml:"noOptimFlags"`
	NoOptimFileSuffixes []string `yaml:"noOptimFileSuffixes"`

	LogLevel  string    `yaml:"logLevel"`
	LogFormat string    `yaml:"logFormat"`
	Run       RunConfig `yaml:"run"`

	// Workspace is the directory relative scene paths are resolved
	// against. Empty keeps them relative to the working directory.
	Workspace string `yaml:"-"`
}

// RunConfig controls direct execution of generated commands.
type RunConfig struct {
	Timeout   string   `yaml:"timeout"`
	MaxOutput int      `yaml:"maxOutput"`
	Jobs      int      `yaml:"jobs"`
	LogDir    string   `yaml:"logDir"`
	Blocklist []string `yaml:"blocklist"`
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// An empty path falls back to DefaultConfigPath when that file exists.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Run: RunConfig{
			Jobs: 1,
		},
	}

	if path == "" {
		if def := DefaultConfigPath(); fileExists(def) {
			path = def
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("BATCHGEN_EXECUTABLE"); v != "" {
		c.Executable = v
	}
	if v, ok := os.LookupEnv("BATCHGEN_STATS_DIR"); ok {
		c.StatsFilePath = &v
	}
	if v := os.Getenv("BATCHGEN_SCENE_DIR"); v != "" {
		c.SceneDir = v
	}
	if v := os.Getenv("BATCHGEN_PRIM_IN_LEAF"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &batch.ConfigurationError{Field: "BATCHGEN_PRIM_IN_LEAF", Reason: fmt.Sprintf("not an integer: %q", v)}
		}
		c.PrimInLeafCount = &n
	}
	if v := os.Getenv("BATCHGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BATCHGEN_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("BATCHGEN_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	return nil
}

// Batch resolves the preset and overrides into a generator configuration.
func (c *Config) Batch() (batch.Config, error) {
	name := c.Preset
	if name == "" {
		name = batch.DefaultPreset
	}
	out, err := batch.Preset(name)
	if err != nil {
		return batch.Config{}, err
	}

	if c.Executable != "" {
		out.Executable = c.Executable
	}
	if c.StatsFilePath != nil {
		out.StatsDir = *c.StatsFilePath
	}
	if c.PrimInLeafCount != nil {
		out.PrimInLeafCount = *c.PrimInLeafCount
	}
	if c.SceneDir != "" {
		out.SceneDir = c.SceneDir
	}
	if len(c.ViewNames) > 0 {
		out.Views = append([]string(nil), c.ViewNames...)
	}

	legacy := c.NoOptimFlags != nil || c.NoOptimFileSuffixes != nil
	switch {
	case legacy && len(c.Variants) > 0:
		return batch.Config{}, &batch.ConfigurationError{Field: "variants", Reason: "cannot be combined with noOptimFlags/noOptimFileSuffixes"}
	case legacy:
		variants, err := batch.PairVariants(c.NoOptimFlags, c.NoOptimFileSuffixes)
		if err != nil {
			return batch.Config{}, err
		}
		out.Variants = variants
	case len(c.Variants) > 0:
		out.Variants = append([]batch.Variant(nil), c.Variants...)
	}

	out.SceneDir = resolveSceneDir(c.Workspace, out.SceneDir)

	if err := out.Validate(); err != nil {
		return batch.Config{}, err
	}
	return out, nil
}

// RunTimeout parses the per-command timeout. Empty means no timeout.
func (c *Config) RunTimeout() (time.Duration, error) {
	if c.Run.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 0, &batch.ConfigurationError{Field: "run.timeout", Reason: err.Error()}
	}
	if d < 0 {
		return 0, &batch.ConfigurationError{Field: "run.timeout", Reason: "must not be negative"}
	}
	return d, nil
}

// resolveSceneDir anchors a relative scene directory at the workspace.
// The result keeps a trailing separator because view paths are built by
// concatenation.
func resolveSceneDir(workspace, dir string) string {
	if workspace == "" || filepath.IsAbs(dir) {
		return dir
	}
	joined := filepath.Join(workspace, dir)
	if !strings.HasSuffix(joined, string(filepath.Separator)) {
		joined += string(filepath.Separator)
	}
	return joined
}

// DefaultConfigPath returns the default location for the CLI config file.
func DefaultConfigPath() string {
	if path := os.Getenv("BATCHGEN_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".batchgen", "config.yaml")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
