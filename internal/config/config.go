// Package config loads strata.json project configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = "strata.json"

// Config is the parsed contents of strata.json.
type Config struct {
	// Name is the project name, used in logs and the default page title.
	Name string `json:"name"`

	// RoutesDir is the directory holding routes.json and route content
	// files, relative to the config file. Defaults to "routes".
	RoutesDir string `json:"routesDir,omitempty"`

	// Manifest is the manifest file name inside RoutesDir. Defaults to
	// "routes.json".
	Manifest string `json:"manifest,omitempty"`

	// Server holds dev server settings.
	Server ServerConfig `json:"server,omitempty"`

	// Render holds rendering settings.
	Render RenderConfig `json:"render,omitempty"`

	// root is the directory containing the config file.
	root string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int    `json:"port,omitempty"`
	Host string `json:"host,omitempty"`
}

// RenderConfig configures the rendering pipeline.
type RenderConfig struct {
	// Formats lists the output formats to serve. Defaults to ["html"].
	Formats []string `json:"formats,omitempty"`

	// MaxWidgetDepth caps recursive widget expansion. Zero means the
	// engine default.
	MaxWidgetDepth int `json:"maxWidgetDepth,omitempty"`
}

// Default returns a Config with default values applied, rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Name:      "strata",
		RoutesDir: "routes",
		Manifest:  "routes.json",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Render: RenderConfig{
			Formats: []string{"html"},
		},
		root: dir,
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default(filepath.Dir(path))
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Find searches for strata.json starting at dir and walking upward to the
// filesystem root. It returns the path of the first config file found.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, dir)
		}
		abs = parent
	}
}

// Root returns the directory containing the config file.
func (c *Config) Root() string {
	return c.root
}

// RoutesPath returns the absolute path of the routes directory.
func (c *Config) RoutesPath() string {
	return filepath.Join(c.root, c.RoutesDir)
}

// ManifestPath returns the absolute path of the route manifest file.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.RoutesPath(), c.Manifest)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "strata"
	}
	if c.RoutesDir == "" {
		c.RoutesDir = "routes"
	}
	if c.Manifest == "" {
		c.Manifest = "routes.json"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = []string{"html"}
	}
}
