package core

import (
	"context"
	"fmt"
	"time"

	"github.com/droidgen/droidgen/config"
	"github.com/droidgen/droidgen/fs"
	"github.com/droidgen/droidgen/llm"
	"github.com/droidgen/droidgen/logger"
)

type StageType int

const (
	PickName StageType = iota
	MaterializeTemplate
	PlanArchitecture
	GenerateLogic
	GenerateLayout
	GenerateManifest
	GenerateBuildConfig
	StampDisplayName
	Done
)

func (s StageType) String() string {
	switch s {
	case PickName:
		return "PickName"
	case MaterializeTemplate:
		return "MaterializeTemplate"
	case PlanArchitecture:
		return "PlanArchitecture"
	case GenerateLogic:
		return "GenerateLogic"
	case GenerateLayout:
		return "GenerateLayout"
	case GenerateManifest:
		return "GenerateManifest"
	case GenerateBuildConfig:
		return "GenerateBuildConfig"
	case StampDisplayName:
		return "StampDisplayName"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("StageType(%d)", int(s))
}

// Stage is one ordered step of the pipeline.
type Stage interface {
	Execute(ctx context.Context, state *State) error
}

// State is the mutable record owned by one pipeline run. Stage outputs
// are append-only: later stages read earlier outputs to build their
// prompts, never the other way around.
type State struct {
	Idea             string
	AppName          string
	ArchitecturePlan string
	TargetDir        string

	order   []string
	outputs map[string]string

	Client *llm.Client
	Fs     *fs.Manager
	Config *config.Config
	Logger logger.Logger
	notify llm.Notifier
}

// AppendOutput records a stage's generated content. Existing outputs are
// never overwritten.
func (s *State) AppendOutput(name, content string) {
	if _, ok := s.outputs[name]; ok {
		return
	}
	s.order = append(s.order, name)
	s.outputs[name] = content
}

// Output returns the recorded content for a stage, or the empty string.
func (s *State) Output(name string) string {
	return s.outputs[name]
}

// OutputOrder returns stage names in generation order.
func (s *State) OutputOrder() []string {
	return append([]string(nil), s.order...)
}

// Notify delivers a progress message to the sink. Delivery is
// best-effort: a panicking sink is swallowed.
func (s *State) Notify(msg string) {
	if s.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.Logger.WithField("panic", r).Warn("progress notification failed")
		}
	}()
	s.notify(msg)
}

type Pipeline struct {
	stageManager *StageManager
	state        *State
	publisher    StagePublisher
}

func NewPipeline(client *llm.Client, fsm *fs.Manager, cfg *config.Config, pub StagePublisher, notify llm.Notifier, l logger.Logger) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("pipeline requires a model client")
	}
	if l == nil {
		l = logger.NewNullLogger()
	}
	if pub == nil {
		pub = &DefaultStagePublisher{}
	}
	return &Pipeline{
		state: &State{
			outputs: make(map[string]string),
			Client:  client,
			Fs:      fsm,
			Config:  cfg,
			Logger:  l,
			notify:  notify,
		},
		publisher:    pub,
		stageManager: NewStageManager(),
	}, nil
}

// Execute runs the full generation sequence for one idea and returns the
// materialized project directory. It is single-shot: a Pipeline must not
// be reused for a second run. Cancellation is polled at stage boundaries
// only; an in-flight model call is not interrupted, and files already
// written stay on disk.
func (p *Pipeline) Execute(ctx context.Context, idea string) (string, error) {
	p.state.Idea = idea
	p.state.Logger.Info("Starting pipeline execution")

	for i, stageType := range p.stageManager.Stages() {
		select {
		case <-ctx.Done():
			p.state.Logger.Info("Pipeline execution cancelled")
			p.publisher.Error(stageType, context.Canceled)
			return "", context.Canceled
		default:
		}

		stage := p.stageManager.GetStage(stageType)
		if stage == nil {
			p.state.Logger.Error(fmt.Sprintf("Stage %v not found", stageType))
			p.publisher.Error(stageType, fmt.Errorf("stage %v not found", stageType))
			return "", fmt.Errorf("stage %v not found", stageType)
		}

		p.state.Logger.Debug(fmt.Sprintf("Executing stage %d: %v", i, stageType))
		startTime := time.Now()
		if err := stage.Execute(ctx, p.state); err != nil {
			p.state.Logger.Error(fmt.Sprintf("Error executing stage %v: %v", stageType, err))
			p.publisher.Error(stageType, err)
			return "", err
		}
		p.state.Logger.Debug(fmt.Sprintf("Stage %v completed in %v", stageType, time.Since(startTime)))
		p.publisher.PublishStage(stageType)
	}

	p.state.Notify("✅ Your Android app is ready!")
	p.publisher.PublishStage(Done)
	p.state.Logger.Info("Pipeline execution completed")
	return p.state.TargetDir, nil
}

type StagePublisher interface {
	PublishStage(stage StageType)
	Error(stage StageType, err error)
}

type DefaultStagePublisher struct{}

func (p *DefaultStagePublisher) PublishStage(stage StageType) {}

func (p *DefaultStagePublisher) Error(stage StageType, err error) {}
