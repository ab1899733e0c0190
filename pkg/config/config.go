// Package config loads memoria settings from a YAML file and the
// environment. Environment variables (optionally from a .env file)
// override file values; defaults fill whatever is left.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server struct {
		Port               int  `yaml:"port"`               // HTTP listen port
		AllowRemoteSources bool `yaml:"allowRemoteSources"` // API requests may load server paths and URLs
	} `yaml:"server"`
	Storage struct {
		Type string `yaml:"type"` // "memory" or "filesystem"
		Path string `yaml:"path"` // base directory for filesystem storage
	} `yaml:"storage"`
	Render struct {
		Supersample float64 `yaml:"supersample"` // collage output scale
		JPEGQuality int     `yaml:"jpegQuality"` // 1-100
		FontPath    string  `yaml:"fontPath"`    // optional custom TTF
	} `yaml:"render"`
	Themes struct {
		File string `yaml:"file"` // extra theme YAML
	} `yaml:"themes"`
}

// Environment variables read by Load.
const (
	EnvPort        = "MEMORIA_PORT"
	EnvStorageType = "STORAGE_TYPE"
	EnvStoragePath = "LOCAL_STORAGE_PATH"
	EnvFontPath    = "MEMORIA_FONT"
	EnvThemesFile  = "MEMORIA_THEMES"
	EnvRemote      = "MEMORIA_ALLOW_REMOTE_SOURCES"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	var c Config
	applyDefaults(&c)
	return c
}

// Load reads the YAML file at path (if non-empty), then .env and the
// process environment, then applies defaults.
func Load(path string) (Config, error) {
	var c Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading .env: %w", err)
		}
		logrus.Debug("No .env file found")
	}
	if err := applyEnv(&c); err != nil {
		return Config{}, err
	}

	applyDefaults(&c)
	return c, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvStorageType); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvFontPath); v != "" {
		c.Render.FontPath = v
	}
	if v := os.Getenv(EnvThemesFile); v != "" {
		c.Themes.File = v
	}
	if v := os.Getenv(EnvRemote); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRemote, v, err)
		}
		c.Server.AllowRemoteSources = allow
	}
	return nil
}

// applyDefaults fills zero values with sensible defaults.
func applyDefaults(c *Config) {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.Type == "filesystem" && c.Storage.Path == "" {
		c.Storage.Path = "./data/assets"
	}
	if c.Render.Supersample <= 0 {
		c.Render.Supersample = 2
	}
	if c.Render.JPEGQuality <= 0 || c.Render.JPEGQuality > 100 {
		c.Render.JPEGQuality = 95
	}
}

// Sample returns an annotated example file for "memoria init".
func Sample() string {
	return `# memoria.yaml
server:
  port: 8080
  allowRemoteSources: false   # let API requests read server paths and URLs
storage:
  type: memory          # memory | filesystem
  path: ./data/assets   # used by filesystem storage
render:
  supersample: 2        # collage output scale
  jpegQuality: 95
  fontPath: ""          # optional TTF replacing the regular face
themes:
  file: ""              # extra themes, see "memoria themes"
`
}
