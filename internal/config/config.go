// Package config loads workspace settings from .kanba/config.json and the
// environment. Everything has a working default; the config file only needs
// to exist when overriding one.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the workspace directory created by kanba init.
const Dir = ".kanba"

// DefaultModel is the Gemini model used when the config does not name one.
const DefaultModel = "gemini-2.5-flash"

// APIKeyEnv is the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

// ErrNoAPIKey indicates the API key environment variable is unset.
var ErrNoAPIKey = fmt.Errorf("%s is not set", APIKeyEnv)

// Config is the resolved workspace configuration.
type Config struct {
	// Model is the Gemini model name used for chat and plan generation.
	Model string `json:"model"`

	// PlansDir is where saved plans live, relative to the workspace root.
	PlansDir string `json:"plans_dir"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Model:    DefaultModel,
		PlansDir: filepath.Join(Dir, "plans"),
	}
}

// Load reads config.json from the workspace directory under root, filling
// unset fields with defaults. A missing file is not an error.
func Load(root string) (Config, error) {
	cfg := Default()

	path := filepath.Join(root, Dir, "config.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.PlansDir != "" {
		cfg.PlansDir = file.PlansDir
	}
	return cfg, nil
}

// APIKey returns the Gemini API key from the environment.
func APIKey() (string, error) {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}
