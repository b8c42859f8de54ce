// Package journal keeps a local SQLite record of every submit attempt, so a
// user can tell afterwards which pairs went through and which failed.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lewtec/parelha/internal/domain"
)

// Journal implements domain.SubmissionLog on SQLite
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("while creating journal folder: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("while opening journal '%s': %w", path, err)
	}
	j, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// New wraps an open database, applying pending migrations
func New(db *sql.DB) (*Journal, error) {
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one submit attempt. A zero At is stamped with the current time.
func (j *Journal) Record(ctx context.Context, s domain.Submission) error {
	if s.At.IsZero() {
		s.At = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO submissions (task_id, couple_id, class_id, pair_index, notes, outcome, detail, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TaskID.String(), s.CoupleID.String(), s.ClassID.String(), s.Index,
		s.Notes, string(s.Outcome), s.Detail, s.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("while recording submission for task '%s': %w", s.TaskID, err)
	}
	return nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	TaskID  domain.ID
	Outcome domain.SubmitOutcome
	Limit   int
}

const selectSubmissions = `
SELECT id, task_id, couple_id, class_id, pair_index, notes, outcome, detail, submitted_at
FROM submissions`

// List returns matching submissions, newest first
func (j *Journal) List(ctx context.Context, f Filter) ([]domain.Submission, error) {
	query := selectSubmissions + " WHERE 1=1"
	var args []any
	if !f.TaskID.IsZero() {
		query += " AND task_id = ?"
		args = append(args, f.TaskID.String())
	}
	if f.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(f.Outcome))
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("while listing submissions: %w", err)
	}
	defer rows.Close()

	result := []domain.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("while listing submissions: %w", err)
	}
	return result, nil
}

// Counts returns how many submissions ended with each outcome
func (j *Journal) Counts(ctx context.Context) (map[domain.SubmitOutcome]int, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM submissions GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("while counting submissions: %w", err)
	}
	defer rows.Close()
	counts := map[domain.SubmitOutcome]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("while counting submissions: %w", err)
		}
		counts[domain.SubmitOutcome(outcome)] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*domain.Submission, error) {
	var (
		s                         domain.Submission
		taskID, coupleID, classID string
		outcome, at               string
	)
	err := row.Scan(&s.ID, &taskID, &coupleID, &classID, &s.Index, &s.Notes, &outcome, &s.Detail, &at)
	if err != nil {
		return nil, fmt.Errorf("while reading submission: %w", err)
	}
	s.TaskID = domain.ID(taskID)
	s.CoupleID = domain.ID(coupleID)
	s.ClassID = domain.ID(classID)
	s.Outcome = domain.SubmitOutcome(outcome)
	s.At, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("while parsing time of submission %d: %w", s.ID, err)
	}
	return &s, nil
}

var _ domain.SubmissionLog = (*Journal)(nil)
