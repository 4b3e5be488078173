package responder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/llm"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/metrics"
)

const defaultStageTimeout = 20 * time.Second

// Pipeline tries each stage in order and returns the first answer. The
// fallback runs last and cannot fail, so Reply always has text.
type Pipeline struct {
	stages   []Stage
	fallback *Fallback
	timeout  time.Duration
	metrics  *metrics.ResponderMetrics
	logg     *logger.Logger
}

// NewPipeline wires the chain. m may be nil; timeout <= 0 uses the default.
func NewPipeline(stages []Stage, fallback *Fallback, timeout time.Duration, m *metrics.ResponderMetrics, logg *logger.Logger) (*Pipeline, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback stage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}
	return &Pipeline{stages: stages, fallback: fallback, timeout: timeout, metrics: m, logg: logg}, nil
}

// Reply produces the customer-facing text for p.
func (p *Pipeline) Reply(ctx context.Context, prompt Prompt) string {
	for _, stage := range p.stages {
		start := time.Now()
		reply, err := p.attempt(ctx, stage, prompt)
		took := time.Since(start)
		if err == nil {
			p.metrics.Observe(stage.Name(), metrics.OutcomeAnswered, took)
			return Sanitize(reply)
		}

		outcome := metrics.OutcomeNoAnswer
		if errors.Is(err, context.DeadlineExceeded) || llm.KindOf(err) == llm.KindTimeout {
			outcome = metrics.OutcomeTimeout
		}
		p.metrics.Observe(stage.Name(), outcome, took)
		p.logg.Warn(p.logg.WithFields(ctx, map[string]any{
			"stage":       stage.Name(),
			"kind":        string(llm.KindOf(err)),
			"duration_ms": took.Milliseconds(),
			"error":       err.Error(),
		}), "responder.stage_failed")

		if ctx.Err() != nil {
			break
		}
	}

	start := time.Now()
	reply := p.fallback.Reply(prompt)
	p.metrics.Observe(p.fallback.Name(), metrics.OutcomeAnswered, time.Since(start))
	return Sanitize(reply)
}

// attempt bounds one stage by the per-stage timeout even when the stage
// ignores its context.
func (p *Pipeline) attempt(ctx context.Context, stage Stage, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("stage panicked: %v", r)}
			}
		}()
		reply, err := stage.Attempt(ctx, prompt)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		return res.reply, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
