// Package apply walks a posting's quick-apply wizard to a terminal state.
package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alirezadp10/ezapply/internal/form"
	"github.com/alirezadp10/ezapply/internal/match"
	"github.com/alirezadp10/ezapply/internal/model"
)

const (
	selApplyButton = "#jobs-apply-button-id"
	selModal       = "div[data-test-modal]"
	selNext        = `[aria-label="Continue to next step"]`
	selReview      = `[aria-label="Review your application"]`
	selSubmit      = `[aria-label="Submit application"]`
	selDismiss     = `[aria-label="Dismiss"]`
	selDiscard     = `[data-control-name="discard_application_confirm_btn"]`
	selErrorIcon   = `[type="error-pebble-icon"]`
	selUnfollow    = `label[for="follow-company-checkbox"]`
)

// Page is the slice of the browser session the applicator drives.
type Page interface {
	Exists(ctx context.Context, sel string) (bool, error)
	ClickIfExists(ctx context.Context, sel string) (bool, error)
	OuterHTML(ctx context.Context, sel string) (string, error)
}

// Filler writes one answer into the wizard.
type Filler interface {
	Fill(ctx context.Context, field model.FormField, answer string) error
}

// Applicator implements model.JobApplicator. Answers come from the field
// history when a previous label is close enough, otherwise from the
// generator; every filled field is written back to the store with its label
// embedding so later runs can reuse it.
type Applicator struct {
	page      Page
	filler    Filler
	answers   model.AnswerGenerator
	embedder  model.Embedder
	store     model.ResultStore
	profile   string
	threshold float64
	maxSteps  int
	logger    *slog.Logger
}

type Options struct {
	Profile             string
	SimilarityThreshold float64
	MaxWizardSteps      int
}

func NewApplicator(page Page, filler Filler, answers model.AnswerGenerator, embedder model.Embedder, store model.ResultStore, opts Options, logger *slog.Logger) *Applicator {
	return &Applicator{
		page:      page,
		filler:    filler,
		answers:   answers,
		embedder:  embedder,
		store:     store,
		profile:   opts.Profile,
		threshold: opts.SimilarityThreshold,
		maxSteps:  opts.MaxWizardSteps,
		logger:    logger,
	}
}

// Apply assumes the posting's page is already loaded. The result always has
// a terminal status; nothing is retried here.
func (a *Applicator) Apply(ctx context.Context, posting model.JobPosting) model.ApplicationResult {
	status, reason := a.walk(ctx, posting)
	if status != model.StatusApplied {
		a.logger.Warn("application not submitted",
			"job_id", posting.ID, "status", status, "reason", reason)
	}
	return model.ApplicationResult{
		JobID:     posting.ID,
		Title:     posting.Title,
		Company:   posting.Company,
		URL:       posting.URL,
		Status:    status,
		Reason:    reason,
		AppliedAt: time.Now(),
	}
}

func (a *Applicator) walk(ctx context.Context, posting model.JobPosting) (model.Status, string) {
	clicked, err := a.page.ClickIfExists(ctx, selApplyButton)
	if err != nil {
		return model.StatusFailed, fmt.Sprintf("apply button: %v", err)
	}
	if !clicked {
		return model.StatusFailed, "apply button not found"
	}

	for step := 0; step < a.maxSteps; step++ {
		html, err := a.page.OuterHTML(ctx, selModal)
		if err != nil {
			return a.abort(ctx, model.StatusFailed, fmt.Sprintf("read step: %v", err))
		}
		fields, err := form.ParseStep(html)
		if err != nil {
			var unsupported *model.UnsupportedFieldError
			if errors.As(err, &unsupported) {
				return a.abort(ctx, model.StatusSkipped, err.Error())
			}
			return a.abort(ctx, model.StatusFailed, fmt.Sprintf("parse step: %v", err))
		}

		if len(fields) > 0 {
			if status, reason, ok := a.fillStep(ctx, posting, fields); !ok {
				return a.abort(ctx, status, reason)
			}
		}

		advanced, submitted, err := a.advance(ctx)
		if err != nil {
			return a.abort(ctx, model.StatusFailed, fmt.Sprintf("advance: %v", err))
		}
		if submitted {
			a.page.ClickIfExists(ctx, selDismiss)
			a.logger.Info("application submitted", "job_id", posting.ID, "title", posting.Title)
			return model.StatusApplied, ""
		}
		if !advanced {
			return a.abort(ctx, model.StatusFailed, "wizard stuck: no actionable button")
		}
		if failed, err := a.page.Exists(ctx, selErrorIcon); err == nil && failed {
			return a.abort(ctx, model.StatusFailed, "step rejected with validation errors")
		}
	}
	return a.abort(ctx, model.StatusFailed, fmt.Sprintf("wizard did not finish in %d steps", a.maxSteps))
}

// advance pushes the wizard forward one notch: submit on the final step,
// review before it, next everywhere else. The follow-company checkbox is
// cleared before submitting.
func (a *Applicator) advance(ctx context.Context) (advanced, submitted bool, err error) {
	if ok, err := a.page.Exists(ctx, selSubmit); err != nil {
		return false, false, err
	} else if ok {
		a.page.ClickIfExists(ctx, selUnfollow)
		clicked, err := a.page.ClickIfExists(ctx, selSubmit)
		return clicked, clicked, err
	}
	for _, sel := range []string{selNext, selReview} {
		clicked, err := a.page.ClickIfExists(ctx, sel)
		if err != nil {
			return false, false, err
		}
		if clicked {
			return true, false, nil
		}
	}
	return false, false, nil
}

// fillStep answers every field on the current step. ok=false carries a
// terminal status for the posting.
func (a *Applicator) fillStep(ctx context.Context, posting model.JobPosting, fields []model.FormField) (model.Status, string, bool) {
	answers, vecs, err := a.resolveAnswers(ctx, fields)
	if err != nil {
		var unsupported *model.UnsupportedFieldError
		if errors.As(err, &unsupported) {
			return model.StatusSkipped, err.Error(), false
		}
		return model.StatusFailed, err.Error(), false
	}

	for _, field := range fields {
		text, ok := answers[field.Key()]
		if !ok || text == "" {
			return model.StatusFailed, fmt.Sprintf("no answer for %q", field.Label), false
		}
		if err := a.filler.Fill(ctx, field, text); err != nil {
			var unsupported *model.UnsupportedFieldError
			if errors.As(err, &unsupported) {
				return model.StatusSkipped, err.Error(), false
			}
			return model.StatusFailed, fmt.Sprintf("fill %q: %v", field.Label, err), false
		}
		a.persistField(posting.ID, field, text, vecs[field.Key()])
	}
	return "", "", true
}

// resolveAnswers reuses stored answers whose label embedding is close enough
// and asks the generator only for the remainder. The returned vecs map holds
// the label embedding for every field that got one.
func (a *Applicator) resolveAnswers(ctx context.Context, fields []model.FormField) (map[string]string, map[string][]float32, error) {
	answers := make(map[string]string, len(fields))
	vecs := make(map[string][]float32, len(fields))

	var history []model.StoredField
	if a.embedder != nil {
		h, err := a.store.Fields()
		if err != nil {
			a.logger.Warn("field history unavailable", "error", err)
		} else {
			history = h
		}
	}

	var missing []model.FormField
	for _, field := range fields {
		if a.embedder == nil {
			missing = append(missing, field)
			continue
		}
		vec, err := a.embedder.Embed(ctx, field.Label)
		if err != nil {
			a.logger.Warn("embed label", "label", field.Label, "error", err)
			missing = append(missing, field)
			continue
		}
		vecs[field.Key()] = vec
		if prev, ok := match.BestMatch(vec, history, a.threshold); ok {
			a.logger.Debug("answer reused", "label", field.Label, "from", prev.Label)
			answers[field.Key()] = prev.Value
			continue
		}
		missing = append(missing, field)
	}

	if len(missing) > 0 {
		generated, err := a.answers.GenerateAnswers(ctx, missing, a.profile)
		if err != nil {
			return nil, nil, err
		}
		for _, ans := range generated {
			answers[ans.FieldID] = ans.Text
		}
	}
	return answers, vecs, nil
}

// persistField is best-effort; a storage hiccup must not sink the application.
func (a *Applicator) persistField(jobID string, field model.FormField, value string, vec []float32) {
	err := a.store.SaveField(model.StoredField{
		Label:     field.Label,
		Value:     value,
		Kind:      field.Kind,
		Embedding: match.EncodeVec(vec),
		JobID:     jobID,
	})
	if err != nil {
		a.logger.Warn("save field", "label", field.Label, "error", err)
	}
}

// abort backs out of the wizard so the next posting starts clean, then
// returns the terminal status unchanged.
func (a *Applicator) abort(ctx context.Context, status model.Status, reason string) (model.Status, string) {
	a.page.ClickIfExists(ctx, selDismiss)
	a.page.ClickIfExists(ctx, selDiscard)
	return status, reason
}
