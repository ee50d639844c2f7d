// internal/config/config.go
//
// This package handles configuration and the .sce directory structure.
// Every project played with sceplay gets a .sce/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// SceDir is the name of the directory we create in each project
	SceDir = ".sce"

	// EnvPrefix prefixes environment overrides, e.g. SCEPLAY_FRAME_RATE.
	EnvPrefix = "SCEPLAY"

	defaultFrameRate = 30
	maxFrameRate     = 240
	defaultLogLevel  = "info"
)

const defaultProjectConfigYAML = `# sceplay project configuration
version: 1

# Frames per second. The director runs one tick per frame.
frame_rate: 30

# Script to play. Leave empty to play the bundled demo scene.
# Relative paths resolve against the project directory.
script: ""

# Asset root holding role/<id>/<action>.yaml clips. Empty uses the bundled demo assets.
assets: ""

log:
  level: info

playback:
  # Press "next" on dialogs automatically (headless runs).
  auto_confirm: false
  # Stop after this many ticks; 0 runs until the script finishes.
  max_ticks: 0
`

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// PlaybackConfig controls headless playback.
type PlaybackConfig struct {
	AutoConfirm bool `yaml:"auto_confirm" mapstructure:"auto_confirm"`
	MaxTicks    int  `yaml:"max_ticks" mapstructure:"max_ticks"`
}

// ProjectConfig models .sce/config.yaml.
type ProjectConfig struct {
	Version   int            `yaml:"version" mapstructure:"version"`
	FrameRate int            `yaml:"frame_rate" mapstructure:"frame_rate"`
	Script    string         `yaml:"script" mapstructure:"script"`
	Assets    string         `yaml:"assets" mapstructure:"assets"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
	Playback  PlaybackConfig `yaml:"playback" mapstructure:"playback"`
}

// Config holds the runtime configuration for sceplay.
type Config struct {
	// ProjectDir is the directory sceplay was started in
	ProjectDir string

	// SceProjectDir is ProjectDir/.sce
	SceProjectDir string

	Project ProjectConfig
}

// InitProjectDir creates the .sce directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .sce/
// ├── config.yaml
// ├── logs/     <- sceplay.log
// └── scripts/  <- scene scripts loaded by name
func InitProjectDir(projectDir string) error {
	sceDir := filepath.Join(projectDir, SceDir)
	dirs := []string{
		filepath.Join(sceDir, "logs"),
		filepath.Join(sceDir, "scripts"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(sceDir, "config.yaml"))
}

// Load reads .sce/config.yaml (if present) and applies SCEPLAY_* environment
// overrides on top of the defaults.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:    projectDir,
		SceProjectDir: filepath.Join(projectDir, SceDir),
	}

	v := viper.New()
	def := defaultProjectConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("frame_rate", def.FrameRate)
	v.SetDefault("script", def.Script)
	v.SetDefault("assets", def.Assets)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("playback.auto_confirm", def.Playback.AutoConfirm)
	v.SetDefault("playback.max_ticks", def.Playback.MaxTicks)

	v.SetConfigType("yaml")
	v.SetConfigFile(cfg.ProjectConfigPath())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", cfg.ProjectConfigPath(), err)
	}

	var parsed ProjectConfig
	if err := v.Unmarshal(&parsed); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	parsed.applyDefaults()
	parsed.normalize(projectDir)
	if err := parsed.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Project = parsed
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.SceProjectDir, "logs")
}

// ScriptsDir returns the directory scripts are loaded from by name
func (c *Config) ScriptsDir() string {
	return filepath.Join(c.SceProjectDir, "scripts")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.SceProjectDir, "config.yaml")
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Project.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// SetScript updates the script to play and persists the value back to
// .sce/config.yaml.
func (c *Config) SetScript(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config: script path is required")
	}
	c.Project.Script = path
	return c.saveProjectConfig()
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:   1,
		FrameRate: defaultFrameRate,
		Log:       LogConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.FrameRate == 0 {
		pc.FrameRate = defaultFrameRate
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Script = resolvePath(base, pc.Script)
	pc.Assets = resolvePath(base, pc.Assets)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	if pc.Playback.MaxTicks < 0 {
		pc.Playback.MaxTicks = 0
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.FrameRate < 1 || pc.FrameRate > maxFrameRate {
		return fmt.Errorf("frame_rate must be between 1 and %d", maxFrameRate)
	}
	if _, err := logrus.ParseLevel(pc.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.SceProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure sce dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
