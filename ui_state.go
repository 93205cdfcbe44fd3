package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configDirName = "gridview"

type uiConfig struct {
	Theme     string `yaml:"theme,omitempty"`
	SourceURL string `yaml:"source_url,omitempty"`
	DBPath    string `yaml:"db_path,omitempty"`
	Locale    string `yaml:"locale,omitempty"`
	Telemetry *bool  `yaml:"telemetry,omitempty"`
}

func (c *uiConfig) telemetryEnabled() bool {
	return c == nil || c.Telemetry == nil || *c.Telemetry
}

func (c *uiConfig) databasePath() string {
	if c != nil && strings.TrimSpace(c.DBPath) != "" {
		return c.DBPath
	}
	return filepath.Join(resolveConfigDir(), "companies.sqlite")
}

// loadUIConfig reads ui.yaml from dir. Missing or malformed files yield an
// empty config; the returned path is where saves go.
func loadUIConfig(dir string) (*uiConfig, string) {
	path := filepath.Join(dir, "ui.yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &uiConfig{}, path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func resolveConfigDir() string {
	if dir := strings.TrimSpace(os.Getenv("GRIDVIEW_CONFIG_DIR")); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, configDirName)
}
