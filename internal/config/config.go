package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "/etc/check_mk/spectrum_scale.yaml"

// Config holds everything a probe run needs. It is assembled once at startup
// and passed by value; probe code never reads flags or the environment.
type Config struct {
	InstallDir    string        `yaml:"install_dir"`
	Executable    string        `yaml:"executable"`
	RecordPrefix  string        `yaml:"record_prefix"`
	AgentLocalDir string        `yaml:"agent_local_dir"`
	Journal       string        `yaml:"journal"`
	LogLevel      string        `yaml:"log_level"`
	Timeout       time.Duration `yaml:"timeout"`

	// Scope of the check.
	Node      string `yaml:"node"`
	Component string `yaml:"component"`

	// Output options.
	Metrics bool `yaml:"metrics"`
	Details bool `yaml:"details"`
}

// Default returns the configuration of a stock Spectrum Scale installation.
func Default() Config {
	return Config{
		InstallDir:    "/usr/lpp/mmfs/bin/",
		Executable:    "mmhealth",
		RecordPrefix:  "mmhealth:State:",
		AgentLocalDir: "/usr/lib/check_mk_agent/local",
		LogLevel:      "warn",
		Component:     "NODE",
	}
}

// ToolPath returns the full path of the mmhealth executable.
func (c Config) ToolPath() string {
	return filepath.Join(c.InstallDir, c.Executable)
}

// Load reads path over the defaults. An empty path falls back to DefaultPath,
// which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that would make every probe run fail.
func (c Config) Validate() error {
	if c.InstallDir == "" {
		return errors.New("install_dir must not be empty")
	}
	if c.Executable == "" || strings.ContainsAny(c.Executable, " \t") {
		return fmt.Errorf("invalid executable %q", c.Executable)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	// The node ends up as a single argument of the mmhealth command line.
	if strings.ContainsFunc(c.Node, unicode.IsSpace) {
		return fmt.Errorf("invalid node %q: must not contain whitespace", c.Node)
	}
	return nil
}

func hydrateDefaults(cfg Config) Config {
	def := Default()
	if cfg.RecordPrefix == "" {
		cfg.RecordPrefix = def.RecordPrefix
	}
	if cfg.AgentLocalDir == "" {
		cfg.AgentLocalDir = def.AgentLocalDir
	}
	if cfg.Component == "" {
		cfg.Component = def.Component
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}
