package database

import (
	"context"
	"fmt"
)

// EntityKeys are the identity keys of the entities found by one run, as
// stored in the per-entity tables. Compare two of them to see what changed.
type EntityKeys struct {
	Emails       []string
	Phones       []string
	People       []string
	SocialLinks  []string
	Technologies []string
}

// entityQueries select one sorted key column per kind.
var entityQueries = []struct {
	name  string
	query string
	dst   func(*EntityKeys) *[]string
}{
	{"emails", `SELECT email FROM emails WHERE run_id = ? ORDER BY email`,
		func(k *EntityKeys) *[]string { return &k.Emails }},
	{"phones", `SELECT phone FROM phones WHERE run_id = ? ORDER BY phone`,
		func(k *EntityKeys) *[]string { return &k.Phones }},
	{"people", `SELECT name FROM people WHERE run_id = ? ORDER BY name_key`,
		func(k *EntityKeys) *[]string { return &k.People }},
	{"social_links", `SELECT platform || ' ' || url FROM social_links WHERE run_id = ? ORDER BY platform, url`,
		func(k *EntityKeys) *[]string { return &k.SocialLinks }},
	{"technologies", `SELECT category || '/' || name FROM technologies WHERE run_id = ? ORDER BY category, name`,
		func(k *EntityKeys) *[]string { return &k.Technologies }},
}

// Entities loads the entity keys of runID.
func (cdb *CrawlDB) Entities(ctx context.Context, runID string) (*EntityKeys, error) {
	var exists int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crawl_runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	keys := &EntityKeys{}
	for _, q := range entityQueries {
		values, err := cdb.column(ctx, q.query, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", q.name, err)
		}
		*q.dst(keys) = values
	}
	return keys, nil
}

func (cdb *CrawlDB) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
