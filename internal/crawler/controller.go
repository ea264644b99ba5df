package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/leadcrawl/internal/model"
)

// supervise runs on the Crawl goroutine until the crawl must end and
// returns why. A crawl is complete after idleChecks consecutive checks,
// one poll interval apart, that see an empty frontier with nothing in flight.
func (c *crawl) supervise(ctx context.Context, start time.Time) model.StopReason {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(c.cfg.MaxTime - time.Since(start))
	defer deadline.Stop()

	idle := 0
	reported := 0
	for {
		select {
		case <-deadline.C:
			return model.StopReasonTimeLimit
		case <-ctx.Done():
			return model.StopReasonCanceled
		case <-ticker.C:
		}

		reported = c.reportProgress(reported)
		if c.stopped() {
			// A worker found the visited set full.
			return model.StopReasonPageLimit
		}
		if c.frontier.Idle() {
			idle++
			if idle >= idleChecks {
				return model.StopReasonCompleted
			}
		} else {
			idle = 0
		}
	}
}

// reportProgress fires OnProgress on the first visited page and on every
// progressEvery pages after that. It returns the last reported page count.
func (c *crawl) reportProgress(reported int) int {
	if c.cb.OnProgress == nil {
		return reported
	}
	visited := c.store.VisitedCount()
	if visited == 0 || visited == reported {
		return reported
	}
	if reported != 0 && visited/progressEvery == reported/progressEvery {
		return reported
	}

	t := c.store.Counts()
	c.cb.OnProgress(fmt.Sprintf("Visited %d pages: %d emails, %d people, %d phones, %d social platforms",
		visited, t.Emails, t.People, t.Phones, t.SocialPlatforms))
	return visited
}
