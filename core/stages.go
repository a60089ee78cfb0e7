package core

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/droidgen/droidgen/llm"
	"github.com/droidgen/droidgen/logger"
)

// templateRootName is the identifying string the skeleton template
// carries; materialization rewrites it to the chosen app name.
const templateRootName = "Empty_Activity_android_studio_base_template"

const (
	logicRelPath    = "app/src/main/java/com/example/empty_activity_android_studio_base_template/MainActivity.kt"
	layoutRelPath   = "app/src/main/res/layout/activity_main.xml"
	manifestRelPath = "app/src/main/AndroidManifest.xml"
	buildRelPath    = "app/build.gradle.kts"
	stringsRelPath  = "app/src/main/res/values/strings.xml"
)

const (
	fallbackAppName = "MyApp"
	maxAppNameLen   = 40
	previewLimit    = 4000
)

// FileStageSpec is the static descriptor for one generated file. Context
// assembles the prompt context from strictly earlier stage outputs; the
// write target is always RelPath, never the filename the model claims.
type FileStageSpec struct {
	Name    string
	RelPath string
	Label   string
	Context func(*State) string
}

var fileStageSpecs = map[StageType]FileStageSpec{
	GenerateLogic: {
		Name:    "logic",
		RelPath: logicRelPath,
		Label:   "📱 Creating your app's main screen...",
		Context: func(s *State) string { return s.ArchitecturePlan },
	},
	GenerateLayout: {
		Name:    "layout",
		RelPath: layoutRelPath,
		Label:   "🎨 Designing your app interface...",
		Context: func(s *State) string { return s.Output("logic") },
	},
	GenerateManifest: {
		Name:    "manifest",
		RelPath: manifestRelPath,
		Label:   "🧭 Configuring your app settings...",
		Context: func(s *State) string { return joinContext(s.Output("logic"), s.Output("layout")) },
	},
	GenerateBuildConfig: {
		Name:    "build",
		RelPath: buildRelPath,
		Label:   "🧩 Finalizing your app build setup...",
		Context: func(s *State) string { return s.Output("logic") },
	},
}

type StageManager struct {
	stages map[StageType]Stage
	order  []StageType
}

func NewStageManager() *StageManager {
	stages := map[StageType]Stage{
		PickName:            &pickNameStage{},
		MaterializeTemplate: &materializeStage{},
		PlanArchitecture:    &planStage{},
		GenerateLogic:       &fileStage{spec: fileStageSpecs[GenerateLogic]},
		GenerateLayout:      &fileStage{spec: fileStageSpecs[GenerateLayout]},
		GenerateManifest:    &fileStage{spec: fileStageSpecs[GenerateManifest]},
		GenerateBuildConfig: &fileStage{spec: fileStageSpecs[GenerateBuildConfig]},
		StampDisplayName:    &stampNameStage{},
	}
	order := []StageType{
		PickName,
		MaterializeTemplate,
		PlanArchitecture,
		GenerateLogic,
		GenerateLayout,
		GenerateManifest,
		GenerateBuildConfig,
		StampDisplayName,
	}
	return &StageManager{stages: stages, order: order}
}

func (m *StageManager) Stages() []StageType {
	return m.order
}

func (m *StageManager) GetStage(stageType StageType) Stage {
	return m.stages[stageType]
}

// pickNameStage asks the model for a short app name. The reply is taken
// verbatim, no structured payload expected.
type pickNameStage struct{}

func (s *pickNameStage) Execute(ctx context.Context, state *State) error {
	state.Notify("⚙️ Setting up your app foundation...")

	raw, err := state.Client.Invoke(ctx, llm.GenerationRequest{
		SystemPrompt: llm.SystemPrompt(),
		UserPrompt:   llm.AppNamePrompt(state.Idea),
		Temperature:  0.2,
		MaxTokens:    64,
	})
	if err != nil {
		return fmt.Errorf("failed to pick app name: %w", err)
	}

	state.AppName = FormatAppName(raw)
	state.Logger.Debug(fmt.Sprintf("App name selected: %s", state.AppName))
	return nil
}

// FormatAppName trims the model's reply into a usable directory-safe
// name: newlines collapsed, capped at 40 runes, falling back to a
// default when the reply is empty.
func FormatAppName(raw string) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
	if name == "" {
		return fallbackAppName
	}
	runes := []rune(name)
	if len(runes) > maxAppNameLen {
		name = strings.TrimSpace(string(runes[:maxAppNameLen]))
	}
	return name
}

// materializeStage copies the static skeleton into the per-run target
// directory. An existing directory of the same name is replaced
// wholesale, never merged. No model dependency; idempotent per name.
type materializeStage struct{}

func (s *materializeStage) Execute(ctx context.Context, state *State) error {
	target := filepath.Join(state.Config.OutputDir, state.AppName)

	if state.Fs.Exists(target) {
		if err := state.Fs.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to replace existing project directory %s: %w", target, err)
		}
	}
	if err := state.Fs.CopyDir(state.Config.TemplateDir, target); err != nil {
		return fmt.Errorf("failed to copy project template: %w", err)
	}

	// Machine-specific Gradle config must not travel with the project.
	localProps := filepath.Join(target, "local.properties")
	if state.Fs.Exists(localProps) {
		nonCritical(state.Logger, "remove local.properties", func() error {
			return state.Fs.Remove(localProps)
		})
	}

	settings := filepath.Join(target, "settings.gradle.kts")
	if state.Fs.Exists(settings) {
		nonCritical(state.Logger, "stamp settings.gradle.kts", func() error {
			return state.Fs.ReplaceInFile(settings,
				fmt.Sprintf("rootProject.name = %q", templateRootName),
				fmt.Sprintf("rootProject.name = %q", state.AppName))
		})
	}

	state.TargetDir = target
	return nil
}

// planStage asks for an architecture plan. The plan is informational
// context for the file stages and is never written to disk.
type planStage struct{}

func (s *planStage) Execute(ctx context.Context, state *State) error {
	state.Notify("🔍 Planning your app structure...")

	plan, err := state.Client.Invoke(ctx, llm.GenerationRequest{
		SystemPrompt: llm.SystemPrompt(),
		UserPrompt:   llm.ArchitecturePrompt(state.Idea, state.AppName),
		Temperature:  0.2,
		MaxTokens:    1024,
	})
	if err != nil {
		return fmt.Errorf("failed to plan architecture: %w", err)
	}

	state.ArchitecturePlan = plan
	return nil
}

// fileStage regenerates one project file from the accumulated context.
type fileStage struct {
	spec FileStageSpec
}

func (s *fileStage) Execute(ctx context.Context, state *State) error {
	state.Notify(s.spec.Label)

	path := filepath.Join(state.TargetDir, filepath.FromSlash(s.spec.RelPath))
	existing := state.Fs.ReadFileOrEmpty(path)

	raw, err := state.Client.Invoke(ctx, llm.GenerationRequest{
		SystemPrompt: llm.SystemPrompt(),
		UserPrompt:   s.buildPrompt(state, existing),
		Temperature:  0.2,
		MaxTokens:    1024,
	})
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", filepath.Base(path), err)
	}

	extracted := Extract(raw)
	if !extracted.WasStructured {
		state.Logger.WithField("file", s.spec.Name).Warn("model response was not structured JSON, writing raw text")
	}

	// Surface the raw response for observability, bounded and best-effort.
	state.Notify(fmt.Sprintf("🧠 %s response:\n%s", filepath.Base(path), previewOf(raw)))

	if err := state.Fs.WriteFile(path, extracted.Content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	state.AppendOutput(s.spec.Name, extracted.Content)
	return nil
}

func (s *fileStage) buildPrompt(state *State, existing string) string {
	var b strings.Builder
	b.WriteString(llm.FileInstruction())
	b.WriteString(fmt.Sprintf("\n\nApp: %s\nIdea: %s", state.AppName, state.Idea))
	if ctx := s.spec.Context(state); ctx != "" {
		b.WriteString("\n\nProject context:\n")
		b.WriteString(ctx)
	}
	if existing != "" {
		b.WriteString("\n\nExisting content:\n")
		b.WriteString(existing)
	}
	return b.String()
}

func joinContext(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func previewOf(response string) string {
	if len(response) <= previewLimit {
		return response
	}
	return response[:previewLimit] + "\n..."
}

// stampNameStage rewrites the display name inside strings.xml. Purely
// cosmetic: a template without the resource, or one the pattern cannot
// match, is left alone.
type stampNameStage struct{}

var appNameResource = regexp.MustCompile(`<string name="app_name">[^<]*</string>`)

func (s *stampNameStage) Execute(ctx context.Context, state *State) error {
	path := filepath.Join(state.TargetDir, filepath.FromSlash(stringsRelPath))
	nonCritical(state.Logger, "stamp display name", func() error {
		return state.Fs.ReplacePattern(path, appNameResource,
			fmt.Sprintf(`<string name="app_name">%s</string>`, state.AppName))
	})
	return nil
}

// nonCritical runs a cosmetic operation whose failure must never change
// control flow. The failure is logged and dropped.
func nonCritical(l logger.Logger, op string, fn func() error) {
	if err := fn(); err != nil {
		l.WithField("op", op).Warn(fmt.Sprintf("non-critical operation failed: %v", err))
	}
}
