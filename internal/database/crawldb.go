package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// FileName is the database file created inside the data directory.
const FileName = "leadcrawl.db"

// CrawlDB stores crawl runs and the entities they found.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	// mode=rw refuses to create the file; mode=rwc allows it.
	// The entity tables rely on ON DELETE CASCADE, so foreign keys are
	// enabled for every connection the pool opens.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := cdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return cdb, nil
}

// Close closes the database.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

func (cdb *CrawlDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawl_runs (
		run_id TEXT PRIMARY KEY,
		site TEXT NOT NULL,
		base_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		stop_reason TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		page_errors INTEGER NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		summary TEXT,
		totals_json TEXT NOT NULL,
		report_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_site ON crawl_runs(site, started_at);

	CREATE TABLE IF NOT EXISTS emails (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		page_url TEXT,
		PRIMARY KEY (run_id, email)
	);
	CREATE INDEX IF NOT EXISTS idx_emails_email ON emails(email);

	CREATE TABLE IF NOT EXISTS phones (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		phone TEXT NOT NULL,
		page_url TEXT,
		PRIMARY KEY (run_id, phone)
	);

	CREATE TABLE IF NOT EXISTS people (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		name_key TEXT NOT NULL,
		name TEXT NOT NULL,
		title TEXT,
		email TEXT,
		phone TEXT,
		linkedin_url TEXT,
		page_url TEXT,
		PRIMARY KEY (run_id, name_key)
	);

	CREATE TABLE IF NOT EXISTS social_links (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		platform TEXT NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, platform, url)
	);

	CREATE TABLE IF NOT EXISTS technologies (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (run_id, category, name)
	);

	CREATE TABLE IF NOT EXISTS images (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		page_url TEXT,
		has_gps INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, url)
	);

	CREATE TABLE IF NOT EXISTS forms (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		page_url TEXT NOT NULL,
		action_url TEXT NOT NULL,
		method TEXT NOT NULL,
		has_csrf INTEGER NOT NULL DEFAULT 0,
		has_file_upload INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, page_url, method, action_url)
	);

	CREATE TABLE IF NOT EXISTS og_pages (
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id) ON DELETE CASCADE,
		page_url TEXT NOT NULL,
		tags_json TEXT NOT NULL,
		PRIMARY KEY (run_id, page_url)
	);
	`
	_, err := cdb.db.ExecContext(ctx, schema)
	return err
}

// SiteKey returns the key runs are stored under: the lower-cased host of
// the canonical URL, or the trimmed input when it does not parse.
func SiteKey(site string) string {
	if canonical, err := urlnorm.Canonical(site); err == nil {
		if host := urlnorm.Host(canonical); host != "" {
			return host
		}
	}
	return site
}

// timeLayout is how timestamps are written. It is fixed width so that
// ORDER BY on the text column sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats are tried in order when reading timestamps back, since
// older rows or manual edits may use SQLite's own datetime format.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
