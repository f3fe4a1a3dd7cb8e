package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alirezadp10/ezapply/internal/model"
)

// SQLiteStore persists application results and answered form fields.
// The applications table is append-only: every attempt adds a row and no
// code path updates or deletes one.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id     TEXT NOT NULL,
			title      TEXT,
			company    TEXT,
			url        TEXT,
			status     TEXT NOT NULL,
			reason     TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`,
		`CREATE TABLE IF NOT EXISTS fields (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			label      TEXT NOT NULL,
			value      TEXT,
			kind       TEXT,
			embedding  BLOB,
			job_id     TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// HasApplied returns true if any application row with status "applied"
// exists for the job.
func (s *SQLiteStore) HasApplied(jobID string) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM applications WHERE job_id = ? AND status = ?",
		jobID, string(model.StatusApplied),
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking applied status for %s: %w", jobID, err)
	}
	return true, nil
}

// SaveResult appends one application result.
func (s *SQLiteStore) SaveResult(res model.ApplicationResult) error {
	appliedAt := res.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO applications (job_id, title, company, url, status, reason, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.JobID, res.Title, res.Company, res.URL, string(res.Status), res.Reason, appliedAt,
	)
	if err != nil {
		return fmt.Errorf("saving result for job %s: %w", res.JobID, err)
	}
	return nil
}

// Results returns all application results, newest first.
func (s *SQLiteStore) Results() ([]model.ApplicationResult, error) {
	rows, err := s.db.Query(
		`SELECT job_id, title, company, url, status, reason, applied_at
		 FROM applications ORDER BY applied_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []model.ApplicationResult
	for rows.Next() {
		var res model.ApplicationResult
		var status string
		if err := rows.Scan(&res.JobID, &res.Title, &res.Company, &res.URL, &status, &res.Reason, &res.AppliedAt); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		res.Status = model.Status(status)
		out = append(out, res)
	}
	return out, rows.Err()
}

// SaveField records one answered form field with its label embedding.
func (s *SQLiteStore) SaveField(f model.StoredField) error {
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO fields (label, value, kind, embedding, job_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Label, f.Value, string(f.Kind), f.Embedding, f.JobID, createdAt,
	)
	if err != nil {
		return fmt.Errorf("saving field %q: %w", f.Label, err)
	}
	return nil
}

// Fields returns every answered field ever stored, oldest first.
func (s *SQLiteStore) Fields() ([]model.StoredField, error) {
	rows, err := s.db.Query(
		`SELECT id, label, value, kind, embedding, job_id, created_at FROM fields ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying fields: %w", err)
	}
	defer rows.Close()

	var out []model.StoredField
	for rows.Next() {
		var f model.StoredField
		var kind string
		if err := rows.Scan(&f.ID, &f.Label, &f.Value, &kind, &f.Embedding, &f.JobID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}
		f.Kind = model.FieldKind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}

// FieldsForJob returns the answered fields recorded for one job, oldest first.
func (s *SQLiteStore) FieldsForJob(jobID string) ([]model.StoredField, error) {
	rows, err := s.db.Query(
		`SELECT id, label, value, kind, embedding, job_id, created_at
		 FROM fields WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying fields for job %s: %w", jobID, err)
	}
	defer rows.Close()

	var out []model.StoredField
	for rows.Next() {
		var f model.StoredField
		var kind string
		if err := rows.Scan(&f.ID, &f.Label, &f.Value, &kind, &f.Embedding, &f.JobID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}
		f.Kind = model.FieldKind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
