package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
)

// Step is one unit of per-site work.
type Step interface {
	// Do runs the step. Non-fatal problems are recorded with
	// report.AddError and nil is returned.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name is used in logs and in report.PerformedSteps.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails.
// The default stops at the first failure.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against report. Cancellation is checked between
// steps; each step handles it within its own work. FinishedAt is set when
// Execute returns.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	defer func() { report.FinishedAt = time.Now().UTC() }()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline canceled",
				slog.String("step", step.Name()),
				slog.Any("reason", err))
			report.AddError(err)
			return err
		}

		p.logger.Debug("executing step",
			slog.String("step", step.Name()),
			slog.String("site", report.Site))

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("site", report.Site),
				slog.Any("error", err))
			report.AddError(err)
			if !p.continueOnError {
				return err
			}
			continue
		}
		report.AddStep(step.Name())
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
