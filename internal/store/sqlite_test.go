package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveResultThenHasApplied(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveResult(model.ApplicationResult{
		JobID:  "123",
		Title:  "Backend Engineer",
		Status: model.StatusApplied,
	}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	applied, err := s.HasApplied("123")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if !applied {
		t.Error("expected HasApplied to return true")
	}
}

func TestHasApplied_FailedDoesNotCount(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveResult(model.ApplicationResult{
		JobID:  "456",
		Status: model.StatusFailed,
		Reason: "generation: timeout",
	}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	applied, err := s.HasApplied("456")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if applied {
		t.Error("failed attempt should not count as applied")
	}
}

func TestHasApplied_Unknown(t *testing.T) {
	s := newTestStore(t)
	applied, err := s.HasApplied("nope")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if applied {
		t.Error("unknown job should not be applied")
	}
}

func TestResults_AppendOnlyAndOrdered(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, st := range []model.Status{model.StatusFailed, model.StatusApplied} {
		if err := s.SaveResult(model.ApplicationResult{
			JobID:     "789",
			Status:    st,
			AppliedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	results, err := s.Results()
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	// Both attempts for the same job remain; nothing was overwritten.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Status != model.StatusApplied {
		t.Errorf("newest first: results[0].Status = %s", results[0].Status)
	}
}

func TestSaveAndQueryFields(t *testing.T) {
	s := newTestStore(t)

	blob := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	if err := s.SaveField(model.StoredField{
		Label:     "Years of experience",
		Value:     "5",
		Kind:      model.FieldText,
		Embedding: blob,
		JobID:     "123",
	}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}
	if err := s.SaveField(model.StoredField{
		Label: "Relocate?",
		Value: "No",
		Kind:  model.FieldRadio,
		JobID: "456",
	}); err != nil {
		t.Fatalf("SaveField: %v", err)
	}

	fields, err := s.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].Label != "Years of experience" || string(fields[0].Embedding) != string(blob) {
		t.Errorf("fields[0] = %+v", fields[0])
	}

	forJob, err := s.FieldsForJob("456")
	if err != nil {
		t.Fatalf("FieldsForJob: %v", err)
	}
	if len(forJob) != 1 || forJob[0].Value != "No" {
		t.Errorf("FieldsForJob = %+v", forJob)
	}
}

func TestNopStore(t *testing.T) {
	n := NewNopStore()
	if err := n.SaveResult(model.ApplicationResult{JobID: "1", Status: model.StatusApplied}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	applied, err := n.HasApplied("1")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if applied {
		t.Error("NopStore should never report applied")
	}
}
