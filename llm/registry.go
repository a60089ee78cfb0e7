package llm

// LocalModel is a friendly preset for a local model, small and
// CPU-friendly first.
type LocalModel struct {
	Name  string
	Model string
	Notes string
}

// LocalModels lists the local presets surfaced by the models command.
// Any Ollama tag works; these are just sane starting points.
func LocalModels() []LocalModel {
	return []LocalModel{
		{Name: "Llama 3.2 3B", Model: "llama3.2:3b", Notes: "default, good balance on CPU"},
		{Name: "TinyLlama 1.1B Chat", Model: "tinyllama:1.1b", Notes: "smallest footprint"},
		{Name: "Phi-3 Mini", Model: "phi3:mini", Notes: "strong reasoning for its size"},
		{Name: "CodeLlama 7B", Model: "codellama:7b", Notes: "code-focused, needs more RAM"},
	}
}
