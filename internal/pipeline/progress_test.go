package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/leadcrawl/internal/model"
)

func TestProgressAggregator(t *testing.T) {
	t.Parallel()

	t.Run("counts records per site from concurrent publishers", func(t *testing.T) {
		t.Parallel()

		var lines []string
		agg := NewProgressAggregator(func(line string) { lines = append(lines, line) })

		var wg sync.WaitGroup
		for _, site := range []string{"https://b.test", "https://a.test"} {
			cb := agg.Callbacks(site)
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					cb.OnEmailFound(model.EmailRecord{})
				}
				cb.OnPersonFound(model.PersonRecord{})
				cb.OnPhoneFound(model.PhoneRecord{})
				cb.OnSocialFound(model.SocialProfile{})
				cb.OnProgress("visited 5 pages")
			}()
		}
		wg.Wait()

		got := agg.Close()
		want := []SiteProgress{
			{Site: "https://a.test", Emails: 10, People: 1, Phones: 1, Social: 1},
			{Site: "https://b.test", Emails: 10, People: 1, Phones: 1, Social: 1},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("progress mismatch (-want +got):\n%s", diff)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 status lines, got %v", lines)
		}
		for _, line := range lines {
			if !strings.HasSuffix(line, "] visited 5 pages") {
				t.Errorf("unexpected line %q", line)
			}
		}
	})

	t.Run("drops events after close", func(t *testing.T) {
		t.Parallel()

		agg := NewProgressAggregator(nil)
		agg.Close()
		agg.Publish(ProgressEvent{Site: "https://acme.test", Kind: ProgressEmail})
		if got := agg.Close(); len(got) != 0 {
			t.Errorf("expected no sites, got %v", got)
		}
	})
}

func TestProgressStep(t *testing.T) {
	t.Parallel()

	var lines []string
	agg := NewProgressAggregator(func(line string) { lines = append(lines, line) })
	inner := &mockStep{name: "crawl", doFunc: func(_ context.Context, report *model.CrawlReport) error {
		report.Result = model.NewCrawlResult("https://acme.test/", "acme.test")
		report.Result.StopReason = model.StopReasonPageLimit
		return nil
	}}
	step := NewProgressStep(inner, agg)
	if step.Name() != "crawl" {
		t.Errorf("expected wrapped name, got %q", step.Name())
	}

	if err := step.Do(context.Background(), model.NewCrawlReport("https://acme.test")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := agg.Close()

	want := []SiteProgress{{Site: "https://acme.test", Finished: true, Reason: model.StopReasonPageLimit}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
	wantLines := []string{
		"[https://acme.test] crawl started",
		"[https://acme.test] finished (page_limit): 0 emails, 0 people, 0 phones, 0 social profiles",
	}
	if diff := cmp.Diff(wantLines, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
