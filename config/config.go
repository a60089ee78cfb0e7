package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LocalSettings selects the local model runtime used when no API
// credentials are configured.
type LocalSettings struct {
	Host  string `mapstructure:"host" json:"host"`
	Model string `mapstructure:"model" json:"model"`
}

// APISettings selects a remote provider. All three fields must be set
// for the remote path to be used.
type APISettings struct {
	Provider string `mapstructure:"provider" json:"provider"`
	Model    string `mapstructure:"model" json:"model"`
	Key      string `mapstructure:"key" json:"key"`
}

// Run records one completed generation for the history view.
type Run struct {
	ID          string    `mapstructure:"id" json:"id"`
	Idea        string    `mapstructure:"idea" json:"idea"`
	AppName     string    `mapstructure:"app_name" json:"app_name"`
	ProjectPath string    `mapstructure:"project_path" json:"project_path"`
	CreatedAt   time.Time `mapstructure:"created_at" json:"created_at"`
}

type Config struct {
	Mode        string        `mapstructure:"mode" json:"mode"` // "local" or "api"
	Local       LocalSettings `mapstructure:"local" json:"local"`
	API         APISettings   `mapstructure:"api" json:"api"`
	TemplateDir string        `mapstructure:"template_dir" json:"template_dir"`
	OutputDir   string        `mapstructure:"output_dir" json:"output_dir"`
	Runs        []Run         `mapstructure:"runs" json:"runs"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Mode: "local",
		Local: LocalSettings{
			Host:  "http://127.0.0.1:11434",
			Model: "llama3.2:3b",
		},
		API: APISettings{
			Provider: "OpenRouter",
			Model:    "openrouter/auto",
			Key:      "",
		},
		TemplateDir: "template",
		OutputDir:   "output",
	}
}

// DefaultPath returns the default on-disk location of the config file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".droidgen", "config.json"), nil
}

// LoadConfig reads the config file at configPath, layering it over the
// defaults. A missing file is not an error; defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	// The run history carries timestamps, which mapstructure does not
	// decode from JSON strings without a hook.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to configPath, creating the directory if needed.
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.Set("mode", c.Mode)
	v.Set("local.host", c.Local.Host)
	v.Set("local.model", c.Local.Model)
	v.Set("api.provider", c.API.Provider)
	v.Set("api.model", c.API.Model)
	v.Set("api.key", c.API.Key)
	v.Set("template_dir", c.TemplateDir)
	v.Set("output_dir", c.OutputDir)
	v.Set("runs", c.Runs)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// UseAPI reports whether the remote path should be used: provider, model
// and key must all be present.
func (c *Config) UseAPI() bool {
	return c.API.Provider != "" && c.API.Model != "" && c.API.Key != ""
}

// RecordRun appends a completed generation to the run history.
func (c *Config) RecordRun(idea, appName, projectPath string) Run {
	run := Run{
		ID:          uuid.NewString(),
		Idea:        idea,
		AppName:     appName,
		ProjectPath: projectPath,
		CreatedAt:   time.Now(),
	}
	c.Runs = append(c.Runs, run)
	return run
}
