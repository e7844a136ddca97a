// Package history provides SQLite persistence for baseline simulations,
// so past matchup results can be listed without re-calling the remote
// simulator.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/statline/matchup-sim/pkg/matchup"
	"github.com/statline/matchup-sim/pkg/session"
)

// Record is one stored baseline simulation.
type Record struct {
	ID         string    `json:"id"`
	Sport      string    `json:"sport"`
	AwayTeam   string    `json:"awayTeam"`
	HomeTeam   string    `json:"homeTeam"`
	AwayScore  float64   `json:"awayScore"`
	HomeScore  float64   `json:"homeScore"`
	AwayWinPct float64   `json:"awayWinPct"`
	HomeWinPct float64   `json:"homeWinPct"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Page is a paginated listing response.
type Page struct {
	Records    []Record `json:"records"`
	TotalCount int      `json:"totalCount"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
}

// Store provides SQLite persistence for simulation history.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the history database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing sql.DB.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the history schema.
func (s *Store) Migrate() error {
	const schema = `CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		sport TEXT NOT NULL,
		away_team TEXT NOT NULL,
		home_team TEXT NOT NULL,
		away_score REAL NOT NULL,
		home_score REAL NOT NULL,
		away_win_pct REAL NOT NULL,
		home_win_pct REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_simulations_created_at ON simulations(created_at DESC);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordBaseline stores a freshly captured baseline and returns the
// inserted record.
func (s *Store) RecordBaseline(ctx context.Context, sel session.Selection, awayName, homeName string, b *matchup.Baseline) (*Record, error) {
	rec := &Record{
		ID:         uuid.New().String(),
		Sport:      string(sel.Sport),
		AwayTeam:   awayName,
		HomeTeam:   homeName,
		AwayScore:  b.AwayScore,
		HomeScore:  b.HomeScore,
		AwayWinPct: b.AwayWinProbability,
		HomeWinPct: b.HomeWinProbability,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO simulations (id, sport, away_team, home_team, away_score, home_score, away_win_pct, home_win_pct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Sport, rec.AwayTeam, rec.HomeTeam,
		rec.AwayScore, rec.HomeScore, rec.AwayWinPct, rec.HomeWinPct, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("history: insert: %w", err)
	}
	return rec, nil
}

// List returns stored simulations, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulations`).Scan(&total); err != nil {
		return nil, fmt.Errorf("history: count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sport, away_team, home_team, away_score, home_score, away_win_pct, home_win_pct, created_at
		 FROM simulations ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	page := &Page{Records: []Record{}, TotalCount: total, Limit: limit, Offset: offset}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Sport, &rec.AwayTeam, &rec.HomeTeam,
			&rec.AwayScore, &rec.HomeScore, &rec.AwayWinPct, &rec.HomeWinPct, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}

	return page, nil
}
