package crawler

import (
	"sync"
	"time"
)

// entry is a URL waiting to be fetched and its link distance from the seed.
type entry struct {
	url   string
	depth int
}

// frontier is a FIFO work queue that also counts entries being processed,
// so "empty" and "finished" can be told apart.
type frontier struct {
	mu       sync.Mutex
	items    []entry
	inFlight int

	// notify wakes one waiting Pop. It has capacity 1 so Push never blocks.
	notify chan struct{}
}

func newFrontier() *frontier {
	return &frontier{notify: make(chan struct{}, 1)}
}

// Push appends e and wakes a waiting worker.
func (f *frontier) Push(e entry) {
	f.mu.Lock()
	f.items = append(f.items, e)
	f.mu.Unlock()
	f.signal()
}

func (f *frontier) signal() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest entry and marks it in flight in one step.
// It waits up to timeout for an entry; the caller must call Done for
// every entry it receives.
func (f *frontier) Pop(timeout time.Duration) (entry, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		f.mu.Lock()
		if len(f.items) > 0 {
			e := f.items[0]
			f.items[0] = entry{}
			f.items = f.items[1:]
			f.inFlight++
			more := len(f.items) > 0
			f.mu.Unlock()
			if more {
				f.signal()
			}
			return e, true
		}
		f.mu.Unlock()

		select {
		case <-f.notify:
		case <-timer.C:
			return entry{}, false
		}
	}
}

// Done marks one popped entry as processed.
func (f *frontier) Done() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

// Idle reports whether the queue is empty and nothing is in flight.
func (f *frontier) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) == 0 && f.inFlight == 0
}

// Len returns the number of queued entries.
func (f *frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
