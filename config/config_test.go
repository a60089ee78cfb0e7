package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "local", cfg.Mode)
	assert.Equal(t, "llama3.2:3b", cfg.Local.Model)
	assert.Equal(t, "OpenRouter", cfg.API.Provider)
	assert.False(t, cfg.UseAPI(), "no key configured, should stay local")
}

func TestUseAPI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Key = "sk-test"
	assert.True(t, cfg.UseAPI())

	cfg.API.Model = ""
	assert.False(t, cfg.UseAPI())
}

func TestRecordRun(t *testing.T) {
	cfg := DefaultConfig()
	run := cfg.RecordRun("A shopping list app", "ShopList", "output/ShopList")

	assert.NotEmpty(t, run.ID)
	assert.Len(t, cfg.Runs, 1)
	assert.Equal(t, "ShopList", cfg.Runs[0].AppName)
	assert.False(t, cfg.Runs[0].CreatedAt.IsZero())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Mode = "api"
	cfg.API.Key = "sk-test"
	cfg.API.Model = "gemini-1.5-flash"
	cfg.API.Provider = "Gemini"
	cfg.RecordRun("idea", "MyApp", "output/MyApp")

	assert.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "api", loaded.Mode)
	assert.Equal(t, "Gemini", loaded.API.Provider)
	assert.Equal(t, "sk-test", loaded.API.Key)
	assert.Len(t, loaded.Runs, 1)
	assert.Equal(t, "MyApp", loaded.Runs[0].AppName)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig().Mode, cfg.Mode)
	assert.Equal(t, DefaultConfig().Local.Model, cfg.Local.Model)
}
