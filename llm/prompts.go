package llm

import "fmt"

// SystemPrompt is sent with every invocation. It pins the model to the
// raw-JSON reply format the extractor knows how to parse.
func SystemPrompt() string {
	return "You are an expert Android app developer. When asked to modify a file, " +
		"respond ONLY in raw JSON with keys 'filename' and 'content'. No prose. " +
		"Keep code concise, compilable, and production quality."
}

// AppNamePrompt asks for a short app name. The reply is used verbatim,
// so the instruction forbids anything but the name itself.
func AppNamePrompt(idea string) string {
	return "Choose a short, friendly Android app name for this idea. " +
		"Respond ONLY with the name.\n\nIdea:" + idea
}

// ArchitecturePrompt asks for a minimal Kotlin/XML file plan.
func ArchitecturePrompt(idea, appName string) string {
	return fmt.Sprintf("Design a simple, clean architecture for an Android app using Kotlin and XML. "+
		"List the files to implement with brief purpose. Keep it minimal."+
		"\n\nApp: %s\nIdea: %s", appName, idea)
}

// FileInstruction is the per-file regeneration task.
func FileInstruction() string {
	return "Given the existing file content, produce a JSON with filename and full replacement content. " +
		"Return ONLY valid JSON: {\"filename\":..., \"content\":...}. " +
		"Target a production-ready Android implementation that matches the app idea."
}
