package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// StopReason describes why a crawl ended.
type StopReason string

// Stop reasons.
const (
	// StopReasonCompleted means the frontier drained.
	StopReasonCompleted StopReason = "completed"
	// StopReasonTimeLimit means the time budget ran out.
	StopReasonTimeLimit StopReason = "time_limit"
	// StopReasonPageLimit means the page budget was reached.
	StopReasonPageLimit StopReason = "page_limit"
	// StopReasonCanceled means the caller's context was canceled.
	StopReasonCanceled StopReason = "canceled"
)

// CrawlResult is the terminal snapshot of one crawl.
// After Crawl returns, the crawler keeps no reference to it.
type CrawlResult struct {
	BaseURL string `json:"base_url"`
	Domain  string `json:"domain"`

	Emails []EmailRecord  `json:"emails"`
	People []PersonRecord `json:"people"`
	Phones []PhoneRecord  `json:"phones"`

	// SocialLinks groups profiles by platform.
	SocialLinks map[SocialPlatform][]SocialProfile `json:"social_links"`

	// Technologies groups technology names by category.
	Technologies map[TechCategory][]string `json:"technologies"`

	// Metadata is the home page metadata. Nil when the home page was not fetched.
	Metadata *PageMetadata `json:"metadata"`

	// OGDataByPage holds the og:* tags of every page that declared any.
	OGDataByPage map[string]map[string]string `json:"og_data_by_page"`

	Images []ImageRecord    `json:"images"`
	Forms  []FormEntryPoint `json:"forms"`

	// VisitedURLs lists every URL admitted to the visited set, in admission order.
	// Pages that failed to fetch are included.
	VisitedURLs []string `json:"visited_urls"`

	DurationSeconds float64 `json:"duration_seconds"`
	Totals          Totals  `json:"totals"`
	Summary         string  `json:"summary"`

	// PageErrors counts pages whose fetch or parse failed.
	PageErrors int        `json:"page_errors"`
	StopReason StopReason `json:"stop_reason"`
}

// Totals are per-kind counts of a CrawlResult.
type Totals struct {
	Emails          int `json:"emails"`
	People          int `json:"people"`
	Phones          int `json:"phones"`
	SocialPlatforms int `json:"social_platforms"`
	Technologies    int `json:"technologies"`
	Images          int `json:"images"`
	Forms           int `json:"forms"`
	OGPages         int `json:"og_pages"`
}

// NewCrawlResult returns an empty result with every collection allocated,
// so an unreachable site still serializes to empty lists and maps.
func NewCrawlResult(baseURL, domain string) *CrawlResult {
	return &CrawlResult{
		BaseURL:      baseURL,
		Domain:       domain,
		Emails:       []EmailRecord{},
		People:       []PersonRecord{},
		Phones:       []PhoneRecord{},
		SocialLinks:  map[SocialPlatform][]SocialProfile{},
		Technologies: map[TechCategory][]string{},
		OGDataByPage: map[string]map[string]string{},
		Images:       []ImageRecord{},
		Forms:        []FormEntryPoint{},
		VisitedURLs:  []string{},
		StopReason:   StopReasonCompleted,
	}
}

// ComputeTotals recomputes Totals from the collections.
func (r *CrawlResult) ComputeTotals() {
	techs := 0
	for _, names := range r.Technologies {
		techs += len(names)
	}
	r.Totals = Totals{
		Emails:          len(r.Emails),
		People:          len(r.People),
		Phones:          len(r.Phones),
		SocialPlatforms: len(r.SocialLinks),
		Technologies:    techs,
		Images:          len(r.Images),
		Forms:           len(r.Forms),
		OGPages:         len(r.OGDataByPage),
	}
}

// TechnologyList flattens Technologies into records sorted by category and name.
func (r *CrawlResult) TechnologyList() []Technology {
	var out []Technology
	for category, names := range r.Technologies {
		for _, name := range names {
			out = append(out, Technology{Category: category, Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SocialList flattens SocialLinks into records sorted by platform and URL.
func (r *CrawlResult) SocialList() []SocialProfile {
	var out []SocialProfile
	for _, profiles := range r.SocialLinks {
		out = append(out, profiles...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// CrawlReport wraps a CrawlResult with run bookkeeping.
type CrawlReport struct {
	// RunID uniquely identifies this run in the database.
	RunID string `json:"run_id"`

	// Site is the seed URL as given by the user.
	Site string `json:"site"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Settings are the limits the crawl ran under.
	Settings RunSettings `json:"settings"`

	Result *CrawlResult `json:"result"`

	// PerformedSteps lists pipeline step names in execution order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Errors lists non-fatal step errors.
	Errors []string `json:"errors,omitempty"`
}

// RunSettings is the configuration snapshot stored with a report.
type RunSettings struct {
	MaxWorkers     int      `json:"max_workers"`
	MaxDepth       int      `json:"max_depth"`
	MaxPages       int      `json:"max_pages"`
	MaxTimeSeconds float64  `json:"max_time_seconds"`
	MergePeople    bool     `json:"merge_people"`
	Include        []string `json:"include,omitempty"`
	Exclude        []string `json:"exclude,omitempty"`
}

// NewCrawlReport creates a report with a fresh run id.
func NewCrawlReport(site string) *CrawlReport {
	return &CrawlReport{
		RunID:     uuid.NewString(),
		Site:      site,
		StartedAt: time.Now().UTC(),
	}
}

// AddStep records a completed pipeline step.
func (r *CrawlReport) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// AddError records a non-fatal error.
func (r *CrawlReport) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}
