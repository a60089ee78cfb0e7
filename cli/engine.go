package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/droidgen/droidgen/config"
	"github.com/droidgen/droidgen/core"
	"github.com/droidgen/droidgen/fs"
	"github.com/droidgen/droidgen/llm"
	"github.com/droidgen/droidgen/logger"
)

type RunRequest struct {
	Idea       string
	ResultChan chan RunResult
	CreatedAt  time.Time
}

type RunResult struct {
	ProjectPath string
	Err         error
}

// Engine runs generation requests on background workers so the UI loop
// stays responsive. Each request gets its own pipeline and state; the
// backend is resolved once per run from the loaded config.
type Engine struct {
	pub          *CliStagePublisher
	logger       logger.Logger
	cfg          *config.Config
	configPath   string
	fs           *fs.Manager
	requests     chan RunRequest
	workers      int
	workerWG     sync.WaitGroup
	shutdownChan chan struct{}
}

func NewEngine(cfg *config.Config, configPath string, fsm *fs.Manager, pub *CliStagePublisher, l logger.Logger, workers int) *Engine {
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &Engine{
		pub:          pub,
		logger:       l,
		cfg:          cfg,
		configPath:   configPath,
		fs:           fsm,
		requests:     make(chan RunRequest, 100),
		workers:      workers,
		shutdownChan: make(chan struct{}),
	}
}

func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		e.workerWG.Add(1)
		go e.worker(ctx)
	}
}

func (e *Engine) worker(ctx context.Context) {
	defer e.workerWG.Done()
	for {
		select {
		case req := <-e.requests:
			req.ResultChan <- e.execute(ctx, req.Idea)
			close(req.ResultChan)
		case <-ctx.Done():
			return
		case <-e.shutdownChan:
			return
		}
	}
}

func (e *Engine) execute(ctx context.Context, idea string) RunResult {
	backend, err := llm.ResolveBackend(e.cfg)
	if err != nil {
		return RunResult{Err: err}
	}
	client := llm.NewClient(backend, e.pub.PublishMessage, e.logger)

	pipeline, err := core.NewPipeline(client, e.fs, e.cfg, e.pub, e.pub.PublishMessage, e.logger)
	if err != nil {
		return RunResult{Err: err}
	}

	path, err := pipeline.Execute(ctx, idea)
	if err != nil {
		return RunResult{Err: err}
	}

	e.recordRun(idea, path)
	return RunResult{ProjectPath: path}
}

// recordRun appends the run to the config history. History is cosmetic;
// a failed save never fails the run.
func (e *Engine) recordRun(idea, path string) {
	e.cfg.RecordRun(idea, filepath.Base(path), path)
	if err := e.cfg.Save(e.configPath); err != nil {
		e.logger.Warn(fmt.Sprintf("Failed to save run history: %v", err))
	}
}

func (e *Engine) AddRequest(idea string) chan RunResult {
	resultChan := make(chan RunResult, 1)
	e.requests <- RunRequest{
		Idea:       idea,
		ResultChan: resultChan,
		CreatedAt:  time.Now(),
	}
	return resultChan
}

func (e *Engine) Shutdown(timeout time.Duration) {
	close(e.shutdownChan)

	done := make(chan struct{})
	go func() {
		e.workerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("All workers shut down gracefully")
	case <-time.After(timeout):
		e.logger.Warn("Shutdown timed out, some workers may still be running")
	}
}
