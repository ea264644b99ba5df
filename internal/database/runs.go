package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/leadcrawl/internal/model"
)

// RunSummary describes a stored run without loading its report.
type RunSummary struct {
	RunID           string
	Site            string
	BaseURL         string
	StartedAt       time.Time
	FinishedAt      time.Time
	StopReason      model.StopReason
	Pages           int
	PageErrors      int
	DurationSeconds float64
	Totals          model.Totals
}

// SaveReport stores the report and its entities in one transaction.
// Saving a run id again replaces the earlier rows.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) error {
	if report == nil || report.Result == nil {
		return ErrNilReport
	}
	r := report.Result

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	totalsJSON, err := json.Marshal(r.Totals)
	if err != nil {
		return fmt.Errorf("failed to serialize totals: %w", err)
	}

	site := r.Domain
	if site == "" {
		site = SiteKey(report.Site)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := deleteRunRows(ctx, tx, report.RunID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (run_id, site, base_url, started_at, finished_at, stop_reason,
		pages, page_errors, duration_seconds, summary, totals_json, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		site,
		r.BaseURL,
		report.StartedAt.UTC().Format(timeLayout),
		report.FinishedAt.UTC().Format(timeLayout),
		string(r.StopReason),
		len(r.VisitedURLs),
		r.PageErrors,
		r.DurationSeconds,
		r.Summary,
		string(totalsJSON),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertEntities(ctx, tx, report.RunID, r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, runID string, r *model.CrawlResult) error {
	insert := func(table, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, append([]any{runID}, args...)...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		return nil
	}

	for _, e := range r.Emails {
		if err := insert("emails", `INSERT OR IGNORE INTO emails (run_id, email, page_url) VALUES (?, ?, ?)`,
			e.Email, e.PageURL); err != nil {
			return err
		}
	}
	for _, p := range r.Phones {
		if err := insert("phones", `INSERT OR IGNORE INTO phones (run_id, phone, page_url) VALUES (?, ?, ?)`,
			p.Phone, p.PageURL); err != nil {
			return err
		}
	}
	for _, p := range r.People {
		if err := insert("people", `INSERT OR IGNORE INTO people
			(run_id, name_key, name, title, email, phone, linkedin_url, page_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			strings.ToLower(p.Name), p.Name, p.Title, p.Email, p.Phone, p.LinkedInURL, p.PageURL); err != nil {
			return err
		}
	}
	for _, s := range r.SocialList() {
		if err := insert("social_links", `INSERT OR IGNORE INTO social_links (run_id, platform, url) VALUES (?, ?, ?)`,
			string(s.Platform), s.URL); err != nil {
			return err
		}
	}
	for _, t := range r.TechnologyList() {
		if err := insert("technologies", `INSERT OR IGNORE INTO technologies (run_id, category, name) VALUES (?, ?, ?)`,
			string(t.Category), t.Name); err != nil {
			return err
		}
	}
	for _, img := range r.Images {
		if err := insert("images", `INSERT OR IGNORE INTO images (run_id, url, page_url, has_gps) VALUES (?, ?, ?, ?)`,
			img.URL, img.PageURL, boolInt(img.EXIF != nil && img.EXIF.HasGPS)); err != nil {
			return err
		}
	}
	for _, f := range r.Forms {
		if err := insert("forms", `INSERT OR IGNORE INTO forms
			(run_id, page_url, action_url, method, has_csrf, has_file_upload) VALUES (?, ?, ?, ?, ?, ?)`,
			f.PageURL, f.ActionURL, f.Method, boolInt(f.HasCSRF), boolInt(f.HasFileUpload)); err != nil {
			return err
		}
	}
	for pageURL, tags := range r.OGDataByPage {
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to serialize og tags: %w", err)
		}
		if err := insert("og_pages", `INSERT OR IGNORE INTO og_pages (run_id, page_url, tags_json) VALUES (?, ?, ?)`,
			pageURL, string(tagsJSON)); err != nil {
			return err
		}
	}
	return nil
}

// GetReport loads the report of runID.
func (cdb *CrawlDB) GetReport(ctx context.Context, runID string) (*model.CrawlReport, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT report_json FROM crawl_runs WHERE run_id = ?`, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeReport(reportJSON)
}

func decodeReport(s string) (*model.CrawlReport, error) {
	var report model.CrawlReport
	if err := json.Unmarshal([]byte(s), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListRuns returns the runs of site, newest first. An empty site lists every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, site string) ([]RunSummary, error) {
	query := `
	SELECT run_id, site, base_url, started_at, finished_at, stop_reason,
		pages, page_errors, duration_seconds, totals_json
	FROM crawl_runs`
	var args []any
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, SiteKey(site))
	}
	query += ` ORDER BY started_at DESC, rowid DESC`

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started, finished, reason, totalsJSON string
		if err := rows.Scan(&run.RunID, &run.Site, &run.BaseURL, &started, &finished, &reason,
			&run.Pages, &run.PageErrors, &run.DurationSeconds, &totalsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.StopReason = model.StopReason(reason)
		if err := json.Unmarshal([]byte(totalsJSON), &run.Totals); err != nil {
			return nil, fmt.Errorf("failed to parse totals of %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListSites returns every site with at least one run, sorted.
func (cdb *CrawlDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT site FROM crawl_runs ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// LatestReports returns up to n reports of site, newest first.
// Rows whose JSON no longer parses are skipped.
func (cdb *CrawlDB) LatestReports(ctx context.Context, site string, n int) ([]*model.CrawlReport, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT report_json FROM crawl_runs
	WHERE site = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?`, SiteKey(site), n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.CrawlReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := decodeReport(reportJSON)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// DeleteRun removes a run and its entities.
func (cdb *CrawlDB) DeleteRun(ctx context.Context, runID string) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	found, err := deleteRunRows(ctx, tx, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// entityTables are the tables keyed by run_id besides crawl_runs.
var entityTables = []string{"emails", "phones", "people", "social_links", "technologies", "images", "forms", "og_pages"}

// deleteRunRows deletes runID from every table and reports whether the run existed.
// Deletes are explicit so they do not depend on the foreign_keys pragma.
func deleteRunRows(ctx context.Context, tx *sql.Tx, runID string) (bool, error) {
	for _, table := range entityTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil { //nolint:gosec // table names are constants
			return false, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM crawl_runs WHERE run_id = ?`, runID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
