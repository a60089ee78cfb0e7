package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/droidgen/droidgen/config"
	"github.com/droidgen/droidgen/fs"
	"github.com/droidgen/droidgen/llm"
	"github.com/droidgen/droidgen/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the model backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string { return "mock" }
func (m *MockBackend) Remote() bool { return false }

func (m *MockBackend) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

const templateSettings = `rootProject.name = "Empty_Activity_android_studio_base_template"` + "\n"

const templateStrings = `<resources>
    <string name="app_name">Empty_Activity_android_studio_base_template</string>
</resources>
`

func newTemplateFs(t *testing.T) *fs.Manager {
	t.Helper()
	m := fs.NewMemoryManager()
	files := map[string]string{
		"template/settings.gradle.kts":      templateSettings,
		"template/local.properties":         "sdk.dir=/home/dev/Android/Sdk\n",
		"template/" + stringsRelPath:        templateStrings,
		"template/" + logicRelPath:          "package com.example\n\nclass MainActivity {}\n",
		"template/" + layoutRelPath:         "<LinearLayout></LinearLayout>\n",
		"template/" + manifestRelPath:       "<manifest></manifest>\n",
		"template/" + buildRelPath:          "plugins {}\n",
		"template/gradle/wrapper/notes.txt": "wrapper placeholder\n",
	}
	for path, content := range files {
		assert.NoError(t, m.WriteFile(filepath.FromSlash(path), content))
	}
	return m
}

type testEnv struct {
	backend  *MockBackend
	fs       *fs.Manager
	pipeline *Pipeline
	prompts  []string
	messages []string
	stages   []StageType
	errs     []error
}

type recordingPublisher struct {
	env *testEnv
}

func (p *recordingPublisher) PublishStage(stage StageType) {
	p.env.stages = append(p.env.stages, stage)
}

func (p *recordingPublisher) Error(stage StageType, err error) {
	p.env.errs = append(p.env.errs, err)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		backend: new(MockBackend),
		fs:      newTemplateFs(t),
	}

	cfg := config.DefaultConfig()
	cfg.TemplateDir = "template"
	cfg.OutputDir = "output"

	notify := func(msg string) { env.messages = append(env.messages, msg) }
	client := llm.NewClient(env.backend, notify, logger.NewNullLogger())

	pipeline, err := NewPipeline(client, env.fs, cfg, &recordingPublisher{env: env}, notify, logger.NewNullLogger())
	assert.NoError(t, err)
	env.pipeline = pipeline
	return env
}

// expect scripts the next Generate call, capturing the prompt it was given.
func (env *testEnv) expect(response string) {
	env.backend.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(llm.GenerationRequest)
			env.prompts = append(env.prompts, req.UserPrompt)
		}).
		Return(response, nil).Once()
}

const (
	logicContent    = "package com.example\n\nclass MainActivity : ComponentActivity()"
	layoutContent   = `<LinearLayout android:id="@+id/shopping_list"/>`
	manifestContent = `<manifest><application android:label="ShopList"/></manifest>`
	buildContent    = `plugins { id("com.android.application") }`
)

func (env *testEnv) expectFullRun() {
	env.expect(" ShopList \n")
	env.expect("Plan: a single MainActivity with a RecyclerView and category headers.")
	env.expect(`{"filename": "MainActivity.kt", "content": "` + "package com.example\\n\\nclass MainActivity : ComponentActivity()" + `"}`)
	env.expect(`{"filename": "activity_main.xml", "content": "<LinearLayout android:id=\"@+id/shopping_list\"/>"}`)
	env.expect(`{"filename": "AndroidManifest.xml", "content": "<manifest><application android:label=\"ShopList\"/></manifest>"}`)
	env.expect(`{"filename": "build.gradle.kts", "content": "plugins { id(\"com.android.application\") }"}`)
}

func TestPipelineEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.expectFullRun()

	target, err := env.pipeline.Execute(context.Background(), "A shopping list app with categories")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("output", "ShopList"), target)

	// Template stamped with the chosen name, machine-specific file stripped.
	settings, err := env.fs.ReadFile(filepath.Join(target, "settings.gradle.kts"))
	assert.NoError(t, err)
	assert.Equal(t, `rootProject.name = "ShopList"`+"\n", settings)
	assert.False(t, env.fs.Exists(filepath.Join(target, "local.properties")))

	// All four files written with the extracted content.
	for rel, want := range map[string]string{
		logicRelPath:    logicContent,
		layoutRelPath:   layoutContent,
		manifestRelPath: manifestContent,
		buildRelPath:    buildContent,
	} {
		content, err := env.fs.ReadFile(filepath.Join(target, filepath.FromSlash(rel)))
		assert.NoError(t, err)
		assert.Equal(t, want, content)
	}

	// Display name substituted in the resource file.
	res, err := env.fs.ReadFile(filepath.Join(target, filepath.FromSlash(stringsRelPath)))
	assert.NoError(t, err)
	assert.Contains(t, res, `<string name="app_name">ShopList</string>`)

	// Stages published in order, ending with Done.
	assert.Equal(t, []StageType{
		PickName, MaterializeTemplate, PlanArchitecture,
		GenerateLogic, GenerateLayout, GenerateManifest, GenerateBuildConfig,
		StampDisplayName, Done,
	}, env.stages)
	assert.Empty(t, env.errs)

	env.backend.AssertExpectations(t)
}

func TestPipelineStageContexts(t *testing.T) {
	env := newTestEnv(t)
	env.expectFullRun()

	_, err := env.pipeline.Execute(context.Background(), "A shopping list app with categories")
	assert.NoError(t, err)
	assert.Len(t, env.prompts, 6)

	logicPrompt := env.prompts[2]
	layoutPrompt := env.prompts[3]
	manifestPrompt := env.prompts[4]
	buildPrompt := env.prompts[5]

	// Logic stage sees the architecture plan.
	assert.Contains(t, logicPrompt, "Plan: a single MainActivity")
	// Layout stage sees the exact logic content just generated.
	assert.Contains(t, layoutPrompt, logicContent)
	// Manifest stage sees both logic and layout.
	assert.Contains(t, manifestPrompt, logicContent)
	assert.Contains(t, manifestPrompt, layoutContent)
	// Build stage sees the logic content.
	assert.Contains(t, buildPrompt, logicContent)
	// No forward references: the layout stage cannot see manifest output.
	assert.NotContains(t, layoutPrompt, manifestContent)

	// The pre-existing template file rides along as additional context.
	assert.Contains(t, logicPrompt, "Existing content:")
	assert.Contains(t, logicPrompt, "class MainActivity {}")
}

func TestPipelineFallsBackToRawResponse(t *testing.T) {
	env := newTestEnv(t)
	prose := "I cannot produce JSON today, but here is Kotlin:\nclass MainActivity"
	env.expect("ShopList")
	env.expect("plan")
	env.expect(prose)
	env.expect(prose)
	env.expect(prose)
	env.expect(prose)

	target, err := env.pipeline.Execute(context.Background(), "A shopping list app")
	assert.NoError(t, err)

	content, err := env.fs.ReadFile(filepath.Join(target, filepath.FromSlash(logicRelPath)))
	assert.NoError(t, err)
	assert.Equal(t, prose, content)
}

func TestPipelineEmptyNameFallsBack(t *testing.T) {
	env := newTestEnv(t)
	env.expect("   \n ")
	env.expect("plan")
	env.expect(`{"content": "a"}`)
	env.expect(`{"content": "b"}`)
	env.expect(`{"content": "c"}`)
	env.expect(`{"content": "d"}`)

	target, err := env.pipeline.Execute(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("output", "MyApp"), target)
}

func TestPipelineCancelledBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.pipeline.Execute(ctx, "A shopping list app")
	assert.ErrorIs(t, err, context.Canceled)
	env.backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPipelineCancelledBetweenStages(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	env.expect("ShopList")
	// Cancel while the plan call is in flight: stages already run keep
	// their output, the logic stage never starts.
	env.backend.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return("plan", nil).Once()

	_, err := env.pipeline.Execute(ctx, "A shopping list app")
	assert.ErrorIs(t, err, context.Canceled)

	// Name and plan ran, materialized files are still on disk.
	target := filepath.Join("output", "ShopList")
	settings, readErr := env.fs.ReadFile(filepath.Join(target, "settings.gradle.kts"))
	assert.NoError(t, readErr)
	assert.Contains(t, settings, "ShopList")

	// The logic file was never regenerated.
	content, readErr := env.fs.ReadFile(filepath.Join(target, filepath.FromSlash(logicRelPath)))
	assert.NoError(t, readErr)
	assert.Equal(t, "package com.example\n\nclass MainActivity {}\n", content)

	env.backend.AssertNumberOfCalls(t, "Generate", 2)
}

func TestPipelineReplacesExistingDirectory(t *testing.T) {
	env := newTestEnv(t)
	stale := filepath.Join("output", "ShopList", "stale.txt")
	assert.NoError(t, env.fs.WriteFile(stale, "left over from a previous run"))

	env.expectFullRun()

	_, err := env.pipeline.Execute(context.Background(), "A shopping list app with categories")
	assert.NoError(t, err)
	assert.False(t, env.fs.Exists(stale), "old directory must be replaced wholesale, not merged")
}

func TestPipelineStageErrorPropagates(t *testing.T) {
	env := newTestEnv(t)
	env.backend.On("Generate", mock.Anything, mock.Anything).
		Return("", assert.AnError).Once()

	_, err := env.pipeline.Execute(context.Background(), "A shopping list app")
	assert.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, env.errs, 1, "publisher should see the stage error")
	assert.Empty(t, env.stages)
}

func TestPipelineNotifications(t *testing.T) {
	env := newTestEnv(t)
	env.expectFullRun()

	_, err := env.pipeline.Execute(context.Background(), "A shopping list app with categories")
	assert.NoError(t, err)

	joined := ""
	for _, m := range env.messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "Setting up your app foundation")
	assert.Contains(t, joined, "Planning your app structure")
	assert.Contains(t, joined, "Creating your app's main screen")
	assert.Contains(t, joined, "response:", "raw response preview should be surfaced")
	assert.Contains(t, joined, "Your Android app is ready")
}

func TestFormatAppName(t *testing.T) {
	assert.Equal(t, "MyApp", FormatAppName(""))
	assert.Equal(t, "MyApp", FormatAppName("  \n "))
	assert.Equal(t, "ShopList", FormatAppName(" ShopList \n"))
	assert.Equal(t, "Shop List", FormatAppName("Shop\nList"))

	long := FormatAppName("An Extremely Long Application Name That Never Seems To End")
	assert.LessOrEqual(t, len([]rune(long)), 40)
}
