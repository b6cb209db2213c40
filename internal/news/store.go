// Package news reads the per-day SQLite snapshots written by the collector.
package news

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/trendpulse/trendpulse/internal/config"
)

// Candidate table names, in probe order. Collector versions disagree on the
// schema, so reading stays tolerant: first table with a title column wins.
var (
	newsTables = []string{"news_items", "titles", "news", "items"}
	rssTables  = []string{"rss_items", "items", "titles"}
)

// Source columns paired with each snapshot kind.
const (
	newsSourceColumn = "source_name"
	rssSourceColumn  = "feed_name"
)

// Store reads day snapshots from the collector's data directory.
type Store struct {
	DataDir string
}

// Collect returns all titles collected on the given day, rendered as
// "[source] title" where a source column is present. A missing snapshot or
// an unrecognized schema yields fewer entries, never an error; only a DB
// that exists but cannot be opened is reported.
func (s *Store) Collect(ctx context.Context, day time.Time) ([]string, error) {
	var entries []string

	newsEntries, err := readSnapshot(ctx, config.NewsDBPath(s.DataDir, day), newsTables, newsSourceColumn)
	if err != nil {
		return nil, fmt.Errorf("reading news snapshot: %w", err)
	}
	entries = append(entries, newsEntries...)

	rssEntries, err := readSnapshot(ctx, config.RSSDBPath(s.DataDir, day), rssTables, rssSourceColumn)
	if err != nil {
		return nil, fmt.Errorf("reading rss snapshot: %w", err)
	}
	entries = append(entries, rssEntries...)

	return entries, nil
}

// readSnapshot opens one day DB and extracts titles from the first candidate
// table that has a title column. Returns nil if the file does not exist or
// no candidate table is usable.
func readSnapshot(ctx context.Context, path string, candidates []string, sourceColumn string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	db, err := openSnapshotDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	for _, name := range candidates {
		if !tables[name] {
			continue
		}

		columns, err := tableColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		if !columns["title"] {
			continue
		}

		return readTitles(ctx, db, name, columns[sourceColumn], sourceColumn)
	}

	return nil, nil
}

// openSnapshotDB opens a snapshot read-only.
func openSnapshotDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// listTables returns the set of table names in the database.
func listTables(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables[name] = true
	}

	return tables, rows.Err()
}

// tableColumns returns the set of column names for a table.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}

	return columns, rows.Err()
}

// readTitles reads the title column, prefixing each entry with its source
// when the table carries one.
func readTitles(ctx context.Context, db *sql.DB, table string, hasSource bool, sourceColumn string) ([]string, error) {
	query := fmt.Sprintf("SELECT title FROM %q", table)
	if hasSource {
		query = fmt.Sprintf("SELECT title, %q FROM %q", sourceColumn, table)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		if hasSource {
			var title string
			var source sql.NullString
			if err := rows.Scan(&title, &source); err != nil {
				return nil, err
			}
			if source.Valid && source.String != "" {
				entries = append(entries, fmt.Sprintf("[%s] %s", source.String, title))
				continue
			}
			entries = append(entries, title)
		} else {
			var title string
			if err := rows.Scan(&title); err != nil {
				return nil, err
			}
			entries = append(entries, title)
		}
	}

	return entries, rows.Err()
}
