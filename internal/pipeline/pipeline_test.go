package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/leadcrawl/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.CrawlReport) error
	callCount int
}

func (m *mockStep) Do(ctx context.Context, report *model.CrawlReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
		if p.logger == nil {
			t.Error("expected a discard logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.CrawlReport) error {
				order = append(order, name)
				return nil
			}}
		}
		p := New()
		p.AddStep(record("crawl"))
		p.AddSteps(record("image_exif"), record("persist"))

		report := model.NewCrawlReport("https://acme.test")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"crawl", "image_exif", "persist"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("execution order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, report.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
		if report.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{name: "failing", doFunc: func(context.Context, *model.CrawlReport) error {
			return errors.New("boom")
		}}
		after := &mockStep{name: "after"}
		p := New()
		p.AddSteps(failing, after)

		report := model.NewCrawlReport("https://acme.test")
		err := p.Execute(context.Background(), report)
		if err == nil || err.Error() != "boom" {
			t.Fatalf("expected boom error, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped")
		}
		if diff := cmp.Diff([]string{"boom"}, report.Errors); diff != "" {
			t.Errorf("errors mismatch (-want +got):\n%s", diff)
		}
		if len(report.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{name: "failing", doFunc: func(context.Context, *model.CrawlReport) error {
			return errors.New("boom")
		}}
		after := &mockStep{name: "after"}
		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		report := model.NewCrawlReport("https://acme.test")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 1 {
			t.Errorf("expected later step to run once, ran %d times", after.callCount)
		}
		if diff := cmp.Diff([]string{"after"}, report.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{name: "first", doFunc: func(context.Context, *model.CrawlReport) error {
			cancel()
			return nil
		}}
		second := &mockStep{name: "second"}
		p := New()
		p.AddSteps(first, second)

		report := model.NewCrawlReport("https://acme.test")
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		if diff := cmp.Diff([]string{"first"}, report.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("logs failures through the configured logger", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		p := New(WithLogger(logger))
		p.AddStep(&mockStep{name: "failing", doFunc: func(context.Context, *model.CrawlReport) error {
			return errors.New("boom")
		}})

		_ = p.Execute(context.Background(), model.NewCrawlReport("https://acme.test"))
		if !strings.Contains(buf.String(), "step failed") {
			t.Errorf("expected failure to be logged, got %q", buf.String())
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})

	t.Run("returns names in order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "persist"})
		if diff := cmp.Diff([]string{"crawl", "persist"}, p.StepNames()); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})
}
