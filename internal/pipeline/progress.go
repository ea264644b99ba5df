package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/model"
)

// ProgressKind is the type of a ProgressEvent.
type ProgressKind int

// Progress event kinds.
const (
	// ProgressStarted is published when a site's crawl begins.
	ProgressStarted ProgressKind = iota
	// ProgressStatus carries a crawler status line.
	ProgressStatus
	// ProgressEmail, ProgressPerson, ProgressPhone and ProgressSocial
	// report one new record.
	ProgressEmail
	ProgressPerson
	ProgressPhone
	ProgressSocial
	// ProgressFinished is published when a site's crawl has ended.
	ProgressFinished
)

// ProgressEvent is one progress notification of one site.
type ProgressEvent struct {
	Site    string
	Kind    ProgressKind
	Message string

	// Reason is set on ProgressFinished.
	Reason model.StopReason
}

// SiteProgress are the counters the aggregator keeps per site.
type SiteProgress struct {
	Site     string
	Emails   int
	People   int
	Phones   int
	Social   int
	Finished bool
	Reason   model.StopReason
}

// defaultProgressBuffer is the event channel capacity.
const defaultProgressBuffer = 64

// ProgressAggregator collects the events of concurrent crawls on one
// channel. A single goroutine consumes it, so the counters need no lock
// and output lines are never interleaved.
type ProgressAggregator struct {
	events chan ProgressEvent
	emit   func(line string)
	done   chan struct{}

	// mu guards closed against concurrent Publish and Close.
	mu     sync.RWMutex
	closed bool

	// sites is owned by the consumer goroutine until done is closed.
	sites map[string]*SiteProgress
}

// NewProgressAggregator starts the consumer goroutine. emit receives the
// status lines; it may be nil. Close must be called to stop the goroutine.
func NewProgressAggregator(emit func(line string)) *ProgressAggregator {
	a := &ProgressAggregator{
		events: make(chan ProgressEvent, defaultProgressBuffer),
		emit:   emit,
		done:   make(chan struct{}),
		sites:  make(map[string]*SiteProgress),
	}
	go a.run()
	return a
}

func (a *ProgressAggregator) run() {
	defer close(a.done)
	for ev := range a.events {
		if line := a.apply(ev); line != "" && a.emit != nil {
			a.emit(line)
		}
	}
}

// apply updates the counters and returns the line to emit, if any.
func (a *ProgressAggregator) apply(ev ProgressEvent) string {
	sp, ok := a.sites[ev.Site]
	if !ok {
		sp = &SiteProgress{Site: ev.Site}
		a.sites[ev.Site] = sp
	}

	switch ev.Kind {
	case ProgressStarted:
		return fmt.Sprintf("[%s] crawl started", ev.Site)
	case ProgressStatus:
		return fmt.Sprintf("[%s] %s", ev.Site, ev.Message)
	case ProgressEmail:
		sp.Emails++
	case ProgressPerson:
		sp.People++
	case ProgressPhone:
		sp.Phones++
	case ProgressSocial:
		sp.Social++
	case ProgressFinished:
		sp.Finished = true
		sp.Reason = ev.Reason
		return fmt.Sprintf("[%s] finished (%s): %d emails, %d people, %d phones, %d social profiles",
			ev.Site, ev.Reason, sp.Emails, sp.People, sp.Phones, sp.Social)
	}
	return ""
}

// Publish sends ev to the consumer. Events published after Close are dropped.
func (a *ProgressAggregator) Publish(ev ProgressEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	a.events <- ev
}

// Callbacks returns crawler callbacks that publish the events of site.
func (a *ProgressAggregator) Callbacks(site string) crawler.Callbacks {
	return crawler.Callbacks{
		OnEmailFound:  func(model.EmailRecord) { a.Publish(ProgressEvent{Site: site, Kind: ProgressEmail}) },
		OnPersonFound: func(model.PersonRecord) { a.Publish(ProgressEvent{Site: site, Kind: ProgressPerson}) },
		OnPhoneFound:  func(model.PhoneRecord) { a.Publish(ProgressEvent{Site: site, Kind: ProgressPhone}) },
		OnSocialFound: func(model.SocialProfile) { a.Publish(ProgressEvent{Site: site, Kind: ProgressSocial}) },
		OnProgress: func(msg string) {
			a.Publish(ProgressEvent{Site: site, Kind: ProgressStatus, Message: msg})
		},
	}
}

// Close stops accepting events, waits until every queued event is
// processed and returns the final counters sorted by site.
func (a *ProgressAggregator) Close() []SiteProgress {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()
	<-a.done

	out := make([]SiteProgress, 0, len(a.sites))
	for _, sp := range a.sites {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Site < out[j].Site })
	return out
}

// ProgressStep publishes the start and end of a site's crawl. Wrap the
// crawl step with it.
type ProgressStep struct {
	inner      Step
	aggregator *ProgressAggregator
}

// NewProgressStep wraps inner so its run is reported to aggregator.
func NewProgressStep(inner Step, aggregator *ProgressAggregator) *ProgressStep {
	return &ProgressStep{inner: inner, aggregator: aggregator}
}

// Name returns the wrapped step's name.
func (s *ProgressStep) Name() string {
	return s.inner.Name()
}

// Do runs the wrapped step between a started and a finished event.
func (s *ProgressStep) Do(ctx context.Context, report *model.CrawlReport) error {
	s.aggregator.Publish(ProgressEvent{Site: report.Site, Kind: ProgressStarted})
	err := s.inner.Do(ctx, report)
	reason := model.StopReasonCanceled
	if report.Result != nil {
		reason = report.Result.StopReason
	}
	s.aggregator.Publish(ProgressEvent{Site: report.Site, Kind: ProgressFinished, Reason: reason})
	return err
}
