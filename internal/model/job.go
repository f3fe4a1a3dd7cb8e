package model

import (
	"context"
	"time"
)

// WorkType is the workplace arrangement a search is restricted to.
type WorkType string

const (
	WorkTypeOnsite WorkType = "onsite"
	WorkTypeRemote WorkType = "remote"
	WorkTypeHybrid WorkType = "hybrid"
)

// Valid reports whether the work type is one of the known arrangements.
func (w WorkType) Valid() bool {
	switch w {
	case WorkTypeOnsite, WorkTypeRemote, WorkTypeHybrid:
		return true
	}
	return false
}

// JobPosting is a single posting discovered on a search results page.
type JobPosting struct {
	ID        string // numeric posting id, unique per platform
	Title     string
	Company   string
	URL       string // direct link to the posting
	EasyApply bool   // posting exposes the in-platform apply button
}

// Result builds an ApplicationResult for this posting with the given
// terminal status, stamped with the current time.
func (p JobPosting) Result(status Status, reason string) ApplicationResult {
	return ApplicationResult{
		JobID:     p.ID,
		Title:     p.Title,
		Company:   p.Company,
		URL:       p.URL,
		Status:    status,
		Reason:    reason,
		AppliedAt: time.Now(),
	}
}

// FieldKind classifies an application form field by the widget used to fill it.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldSelect   FieldKind = "select"
	FieldRadio    FieldKind = "radio"
	FieldCheckbox FieldKind = "checkbox"
	FieldTextarea FieldKind = "textarea"
	FieldFile     FieldKind = "file"
)

// FormField is one unfilled question extracted from a wizard step.
type FormField struct {
	ID      string // DOM id captured at extraction; stable key for answers
	Label   string // cleaned question text
	Kind    FieldKind
	Options []string // for select/radio/checkbox fields
}

// Key returns the identifier answers are matched on: the DOM id when the
// element has one, otherwise the label text.
func (f FormField) Key() string {
	if f.ID != "" {
		return f.ID
	}
	return f.Label
}

// Answer is generated (or reused) text for a single form field.
type Answer struct {
	FieldID string // FormField.Key() of the field this answers
	Label   string
	Text    string
}

// Status is the terminal state of one application attempt.
type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ApplicationResult records the outcome of one posting. Appended to the
// result store exactly once per posting per run; never mutated afterwards.
type ApplicationResult struct {
	JobID     string
	Title     string
	Company   string
	URL       string
	Status    Status
	Reason    string // populated for failed/skipped
	AppliedAt time.Time
}

// StoredField is a previously answered form field kept for answer reuse.
type StoredField struct {
	ID        int64
	Label     string
	Value     string
	Kind      FieldKind
	Embedding []byte // float32 vector of the label, little-endian
	JobID     string
	CreatedAt time.Time
}

// CycleSummary aggregates one full search cycle for reporting.
type CycleSummary struct {
	Searched int // postings discovered across all searches
	Applied  int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// JobSearcher produces easy-apply postings for one keyword/region pair.
type JobSearcher interface {
	Search(ctx context.Context, keyword, geoID string) ([]JobPosting, error)
}

// JobApplicator walks a posting's application wizard to a terminal state.
// The returned result always carries a terminal Status; errors during the
// attempt are folded into Status/Reason.
type JobApplicator interface {
	Apply(ctx context.Context, posting JobPosting) ApplicationResult
}

// AnswerGenerator produces answers for form fields from the user's profile text.
type AnswerGenerator interface {
	GenerateAnswers(ctx context.Context, fields []FormField, profile string) ([]Answer, error)
}

// Embedder converts text into a dense vector for similarity matching.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ResultStore persists application outcomes and answered fields.
type ResultStore interface {
	HasApplied(jobID string) (bool, error)
	SaveResult(res ApplicationResult) error
	Results() ([]ApplicationResult, error)
	SaveField(f StoredField) error
	Fields() ([]StoredField, error)
}

// Notifier reports a completed search cycle.
type Notifier interface {
	NotifyCycle(summary CycleSummary) error
}
