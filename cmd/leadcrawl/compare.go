package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/model"
)

// errNotEnoughRuns is returned when a site has fewer than two stored runs.
var errNotEnoughRuns = errors.New("at least 2 crawls are required for comparison")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <site>",
		Short: "Compare the latest crawl of a site with an earlier one",
		Long: `Compare shows which leads appeared or disappeared between two stored
crawls of the same site: emails, phones, people, social profiles and
technologies.

By default the two most recent crawls are compared. Use 'leadcrawl history <site>'
to list the stored run IDs.

Examples:
  # Compare the latest two crawls
  leadcrawl compare acme.example

  # Compare the latest crawl with a specific earlier run
  leadcrawl compare --with-run-id 0b1c... acme.example

  # Output the comparison as JSON
  leadcrawl compare --json acme.example`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("with-run-id", "i", "", "Compare the latest crawl with this run")
	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Database directory")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	withRunID, err := cmd.Flags().GetString("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := openExistingDB(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	comparison, err := compareRuns(cmd.Context(), db, args[0], withRunID)
	if err != nil {
		return err
	}
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(comparison)
	}
	writeComparisonText(cmd.OutOrStdout(), comparison)
	return nil
}

// openExistingDB opens the database without creating it.
func openExistingDB(dir string) (*database.CrawlDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dir, opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return nil, fmt.Errorf("%w (run 'leadcrawl crawl <url>' first)", err)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// ComparisonResult is the difference between two crawls of one site.
type ComparisonResult struct {
	Site     string     `json:"site"`
	Previous RunRef     `json:"previous"`
	Current  RunRef     `json:"current"`
	Changes  []KindDiff `json:"changes"`
}

// RunRef identifies one side of a comparison.
type RunRef struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Pages     int          `json:"pages"`
	Totals    model.Totals `json:"totals"`
}

// KindDiff lists the added and removed keys of one entity kind.
type KindDiff struct {
	Kind      string   `json:"kind"`
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	Unchanged int      `json:"unchanged"`
}

// HasChanges reports whether anything was added or removed.
func (c *ComparisonResult) HasChanges() bool {
	for _, d := range c.Changes {
		if len(d.Added) > 0 || len(d.Removed) > 0 {
			return true
		}
	}
	return false
}

// compareRuns compares the latest run of site with the one before it, or
// with withRunID when given.
func compareRuns(ctx context.Context, db *database.CrawlDB, site, withRunID string) (*ComparisonResult, error) {
	reports, err := db.LatestReports(ctx, site, 2)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no crawl history found for %s", database.SiteKey(site))
	}
	current := reports[0]

	var previous *model.CrawlReport
	switch {
	case withRunID != "":
		previous, err = db.GetReport(ctx, withRunID)
		if err != nil {
			return nil, err
		}
		if database.SiteKey(previous.Site) != database.SiteKey(site) {
			return nil, fmt.Errorf("run %s belongs to %s, not %s",
				withRunID, database.SiteKey(previous.Site), database.SiteKey(site))
		}
		if previous.RunID == current.RunID {
			return nil, fmt.Errorf("run %s is the latest crawl; choose an earlier run", withRunID)
		}
	case len(reports) < 2:
		return nil, fmt.Errorf("%w (found 1 for %s)", errNotEnoughRuns, database.SiteKey(site))
	default:
		previous = reports[1]
	}

	prevKeys, err := db.Entities(ctx, previous.RunID)
	if err != nil {
		return nil, err
	}
	curKeys, err := db.Entities(ctx, current.RunID)
	if err != nil {
		return nil, err
	}

	return &ComparisonResult{
		Site:     database.SiteKey(site),
		Previous: runRef(previous),
		Current:  runRef(current),
		Changes: []KindDiff{
			diffKeys("emails", prevKeys.Emails, curKeys.Emails),
			diffKeys("phones", prevKeys.Phones, curKeys.Phones),
			diffKeys("people", prevKeys.People, curKeys.People),
			diffKeys("social_links", prevKeys.SocialLinks, curKeys.SocialLinks),
			diffKeys("technologies", prevKeys.Technologies, curKeys.Technologies),
		},
	}, nil
}

func runRef(r *model.CrawlReport) RunRef {
	ref := RunRef{RunID: r.RunID, StartedAt: r.StartedAt}
	if r.Result != nil {
		ref.Pages = len(r.Result.VisitedURLs)
		ref.Totals = r.Result.Totals
	}
	return ref
}

// diffKeys returns the keys only in current (added), only in previous
// (removed), and the count of keys in both. Output order follows the input.
func diffKeys(kind string, previous, current []string) KindDiff {
	inPrev := make(map[string]bool, len(previous))
	for _, k := range previous {
		inPrev[k] = true
	}
	inCur := make(map[string]bool, len(current))
	for _, k := range current {
		inCur[k] = true
	}

	d := KindDiff{Kind: kind}
	for _, k := range current {
		if inPrev[k] {
			d.Unchanged++
		} else {
			d.Added = append(d.Added, k)
		}
	}
	for _, k := range previous {
		if !inCur[k] {
			d.Removed = append(d.Removed, k)
		}
	}
	return d
}

func writeComparisonText(w io.Writer, c *ComparisonResult) {
	const timeFormat = "2006-01-02 15:04:05"

	fmt.Fprintf(w, "Comparison for %s\n", c.Site)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Previous: %s  %s  (%d pages)\n", c.Previous.StartedAt.Format(timeFormat), c.Previous.RunID, c.Previous.Pages)
	fmt.Fprintf(w, "Current:  %s  %s  (%d pages)\n\n", c.Current.StartedAt.Format(timeFormat), c.Current.RunID, c.Current.Pages)

	if !c.HasChanges() {
		fmt.Fprintln(w, "No changes between the two crawls.")
		return
	}

	for _, d := range c.Changes {
		if len(d.Added) == 0 && len(d.Removed) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (+%d -%d, %d unchanged)\n", d.Kind, len(d.Added), len(d.Removed), d.Unchanged)
		for _, k := range d.Added {
			fmt.Fprintf(w, "  + %s\n", k)
		}
		for _, k := range d.Removed {
			fmt.Fprintf(w, "  - %s\n", k)
		}
		fmt.Fprintln(w)
	}
}
