package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/droidgen/droidgen/logger"
)

const maxAttempts = 4

// Client invokes a model backend and shields callers from transient
// transport failures. Remote calls are retried with exponential backoff;
// local calls get a single attempt because a missing runtime will not
// self-resolve. The client returns trimmed raw text and performs no
// response parsing.
type Client struct {
	backend Backend
	notify  Notifier
	logger  logger.Logger

	// sleep is swappable so tests can assert on the backoff schedule.
	sleep func(time.Duration)
}

func NewClient(backend Backend, notify Notifier, l logger.Logger) *Client {
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &Client{
		backend: backend,
		notify:  notify,
		logger:  l,
		sleep:   time.Sleep,
	}
}

// Backend returns the backend this client dispatches to.
func (c *Client) Backend() Backend {
	return c.backend
}

// Invoke sends the request to the backend and returns the trimmed reply.
func (c *Client) Invoke(ctx context.Context, req GenerationRequest) (string, error) {
	c.post(fmt.Sprintf("Contacting %s...", c.backend.Name()))

	if !c.backend.Remote() {
		text, err := c.backend.Generate(ctx, req)
		if err != nil {
			c.post(fmt.Sprintf("❌ %s failed: %v", c.backend.Name(), err))
			return "", fmt.Errorf("local backend %s: %w", c.backend.Name(), err)
		}
		c.post(fmt.Sprintf("✅ %s responded.", c.backend.Name()))
		return strings.TrimSpace(text), nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.backend.Generate(ctx, req)
		if err == nil {
			c.post(fmt.Sprintf("✅ %s responded.", c.backend.Name()))
			return strings.TrimSpace(text), nil
		}
		lastErr = err

		if !IsTransient(err) {
			c.logger.WithField("error", err).Error("terminal backend failure")
			c.post(fmt.Sprintf("❌ %s failed: %v", c.backend.Name(), err))
			return "", fmt.Errorf("%s request failed: %w", c.backend.Name(), err)
		}

		if attempt == maxAttempts-1 {
			break
		}

		wait := time.Duration(1<<uint(attempt)) * time.Second
		c.logger.WithField("attempt", attempt+1).Warn(fmt.Sprintf("transient backend failure, retrying in %v", wait))
		c.post(fmt.Sprintf("%s is busy, retrying in %v...", c.backend.Name(), wait))
		c.sleep(wait)
	}

	c.post(fmt.Sprintf("❌ %s did not recover after %d attempts.", c.backend.Name(), maxAttempts))
	return "", fmt.Errorf("%s did not recover after %d attempts: %w", c.backend.Name(), maxAttempts, lastErr)
}

// post delivers a progress notification. A panicking sink is swallowed;
// progress delivery must never abort a call.
func (c *Client) post(msg string) {
	if c.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("panic", r).Warn("progress notification failed")
		}
	}()
	c.notify(msg)
}
