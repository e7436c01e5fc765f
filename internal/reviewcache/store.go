// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reviewcache is the local durable backstop for referee
// reviews. A review is written here before any network call so the
// referee's work survives a failed or silently dropped backend write.
// The cache is best-effort and single-user: it mirrors the acting
// client's own submissions and is never authoritative over the backend
// manuscript state.
package reviewcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

const dbFile = "journal.db"

// Store manages the review cache SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the cache database at dir/journal.db. The
// schema is created when missing.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			manuscript_id TEXT NOT NULL,
			referee_email TEXT NOT NULL,
			report TEXT NOT NULL,
			verdict TEXT NOT NULL,
			submitted_at TEXT NOT NULL,
			PRIMARY KEY (manuscript_id, referee_email)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_manuscript ON reviews(manuscript_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put upserts the cached review for (manuscriptID, refereeEmail).
func (s *Store) Put(ctx context.Context, manuscriptID, refereeEmail string, review types.Review) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (manuscript_id, referee_email, report, verdict, submitted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(manuscript_id, referee_email) DO UPDATE SET
			report=excluded.report, verdict=excluded.verdict, submitted_at=excluded.submitted_at`,
		manuscriptID, cacheKey(refereeEmail), review.Report, string(review.Verdict),
		review.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("caching review for %s: %w", manuscriptID, err)
	}
	return nil
}

// Get returns the cached review for (manuscriptID, refereeEmail), or
// nil when no entry exists.
func (s *Store) Get(ctx context.Context, manuscriptID, refereeEmail string) (*types.Review, error) {
	var report, verdict, submittedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT report, verdict, submitted_at FROM reviews
		 WHERE manuscript_id = ? AND referee_email = ?`,
		manuscriptID, cacheKey(refereeEmail),
	).Scan(&report, &verdict, &submittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached review for %s: %w", manuscriptID, err)
	}

	review := &types.Review{
		Report:  report,
		Verdict: types.Verdict(verdict),
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, submittedAt); parseErr == nil {
		review.SubmittedAt = t
	}
	return review, nil
}

// Delete removes the cached review for (manuscriptID, refereeEmail).
// Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, manuscriptID, refereeEmail string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE manuscript_id = ? AND referee_email = ?`,
		manuscriptID, cacheKey(refereeEmail),
	)
	if err != nil {
		return fmt.Errorf("clearing cached review for %s: %w", manuscriptID, err)
	}
	return nil
}

// cacheKey normalizes the referee email the same way referee matching
// does, so a cached entry is found regardless of input casing.
func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
