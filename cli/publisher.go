package cli

import (
	"fmt"

	"github.com/droidgen/droidgen/core"
	"github.com/droidgen/droidgen/logger"
)

// CliStagePublisher bridges pipeline events to the TUI over buffered
// channels. A full channel drops the event rather than blocking the
// pipeline.
type CliStagePublisher struct {
	stageChan   chan core.StageType
	errorChan   chan error
	messageChan chan string
	logger      logger.Logger
}

func NewCliStagePublisher(logger logger.Logger) *CliStagePublisher {
	return &CliStagePublisher{
		stageChan:   make(chan core.StageType, 100),
		errorChan:   make(chan error, 10),
		messageChan: make(chan string, 100),
		logger:      logger,
	}
}

func (p *CliStagePublisher) PublishStage(stage core.StageType) {
	select {
	case p.stageChan <- stage:
		p.logger.Debug(fmt.Sprintf("Successfully published stage: %v", stage))
	default:
		p.logger.Warn(fmt.Sprintf("Failed to publish stage: %v. Channel full.", stage))
	}
}

func (p *CliStagePublisher) Error(stage core.StageType, err error) {
	select {
	case p.errorChan <- err:
		p.logger.Debug(fmt.Sprintf("Successfully published error for stage: %v", stage))
	default:
		p.logger.Warn(fmt.Sprintf("Failed to publish error for stage: %v. Channel full.", stage))
	}
}

// PublishMessage forwards a human-readable progress message; it is the
// Notifier the pipeline and model client write to.
func (p *CliStagePublisher) PublishMessage(msg string) {
	select {
	case p.messageChan <- msg:
	default:
		p.logger.Warn("Failed to publish progress message. Channel full.")
	}
}
