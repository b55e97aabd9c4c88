// Package config manages YAML-based configuration and CLI flag overrides.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/drakeos/drakeos/internal/logging"
	"gopkg.in/yaml.v3"
)

// Viewport is the initial client area used to clamp window drags.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Config holds all configuration options for Drake OS
type Config struct {
	Port int `yaml:"port"`

	// Source is the tree description URI: a file path, git://, http(s):// or s3://
	Source string `yaml:"source"`

	Home     string `yaml:"home"`
	User     string `yaml:"user"`
	Hostname string `yaml:"hostname"`
	Locale   string `yaml:"locale"`

	Watch    bool     `yaml:"watch"`
	Open     bool     `yaml:"open"`
	Viewport Viewport `yaml:"viewport"`

	Log logging.Config `yaml:"log"`

	// Internal: path to config file for saving
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:     8080,
		Source:   "filesystem.json",
		Home:     "/home/drake",
		User:     "drake",
		Hostname: "drakeos",
		Locale:   "en",
		Watch:    true,
		Open:     false,
		Viewport: Viewport{Width: 1280, Height: 800},
		Log:      logging.Config{Level: "info", Format: "console"},
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/drakeos"
	}
	return filepath.Join(home, ".config", "drakeos")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from file and command line flags
func Load() (*Config, error) {
	return LoadArgs(flag.CommandLine, os.Args[1:])
}

// LoadArgs is Load over an explicit flag set and argument list.
func LoadArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()

	// Define command line flags with sentinel values to detect if set
	source := fs.String("source", "", "Tree description (file, git://, http(s)://, s3://)")
	port := fs.Int("port", 0, "HTTP server port")
	home := fs.String("home", "", "Home folder inside the tree")
	logLevel := fs.String("log-level", "", "Log level (debug/info/warn/error)")
	watch := fs.Bool("watch", true, "Reload the tree when a local source changes")
	open := fs.Bool("open", false, "Open browser on startup")
	configFile := fs.String("config", "", "Configuration file path")

	fs.StringVar(source, "s", "", "Tree description (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Determine config file path
	var cfgPath string
	if *configFile != "" {
		cfgPath = *configFile
	} else {
		// Try ~/.config/drakeos/config.yaml first
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("drakeos.yaml"); err == nil {
			// Fall back to local drakeos.yaml
			cfgPath = "drakeos.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil && *configFile != "" {
			// Only return error if user explicitly specified config file
			return nil, err
		}
		cfg.configPath = cfgPath
	} else {
		cfg.configPath = GetConfigPath()
	}

	// Command line flags override config file (only if explicitly set)
	if *source != "" {
		cfg.Source = *source
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *home != "" {
		cfg.Home = *home
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "watch":
			cfg.Watch = *watch
		case "open":
			cfg.Open = *open
		}
	})

	cfg.normalize()
	return cfg, nil
}

// normalize fills blanks left by a partial config file.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Home == "" {
		c.Home = d.Home
	}
	if !strings.HasPrefix(c.Home, "/") {
		c.Home = "/" + c.Home
	}
	if c.User == "" {
		c.User = d.User
	}
	if c.Hostname == "" {
		c.Hostname = d.Hostname
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = d.Viewport
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	// Ensure config directory exists
	configDir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

