package llm

import (
	"fmt"
	"strings"

	"github.com/droidgen/droidgen/config"
)

// ResolveBackend picks the backend for a run from the loaded config.
// The choice is made once per pipeline run, not re-checked per call:
// provider, model and key all present selects the remote path, anything
// else falls back to the local runtime.
func ResolveBackend(cfg *config.Config) (Backend, error) {
	if cfg.UseAPI() {
		switch strings.ToLower(cfg.API.Provider) {
		case "openrouter":
			return NewOpenRouterBackend(cfg.API.Model, cfg.API.Key)
		case "gemini":
			return NewGeminiBackend(cfg.API.Model, cfg.API.Key)
		default:
			return nil, fmt.Errorf("unsupported provider %q: choose 'OpenRouter' or 'Gemini'", cfg.API.Provider)
		}
	}
	return NewOllamaBackend(cfg.Local.Host, cfg.Local.Model)
}
