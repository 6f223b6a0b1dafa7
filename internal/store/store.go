package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound is returned when no submission matches.
var ErrNotFound = errors.New("submission not found")

// Submission links an MLflow run to the platform job created for it.
type Submission struct {
	ID              string
	RunID           string
	JobID           string
	ExperimentID    string
	ProjectURI      string
	EntryPoint      string
	ResourceProfile string
	CreatedAt       time.Time
}

// Store is a SQLite ledger of submitted runs.
type Store struct{ db *sql.DB }

func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps :memory: databases shared across calls
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema, err := migrationFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores sub, filling in ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, sub *Submission) error {
	if sub.RunID == "" || sub.JobID == "" {
		return errors.New("run id and job id are required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, run_id, job_id, experiment_id, project_uri, entry_point, resource_profile, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.RunID, sub.JobID, sub.ExperimentID, sub.ProjectURI, sub.EntryPoint, sub.ResourceProfile, sub.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record submission for run %s: %w", sub.RunID, err)
	}
	return nil
}

// ByRunID returns the submission for runID or ErrNotFound.
func (s *Store) ByRunID(ctx context.Context, runID string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, job_id, experiment_id, project_uri, entry_point, resource_profile, created_at
		 FROM submissions WHERE run_id = ?`, runID)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// List returns up to limit submissions, newest first. A non-positive limit
// returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, job_id, experiment_id, project_uri, entry_point, resource_profile, created_at
		 FROM submissions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		sub     Submission
		created int64
	)
	if err := row.Scan(&sub.ID, &sub.RunID, &sub.JobID, &sub.ExperimentID, &sub.ProjectURI, &sub.EntryPoint, &sub.ResourceProfile, &created); err != nil {
		return nil, err
	}
	sub.CreatedAt = time.UnixMilli(created).UTC()
	return &sub, nil
}
