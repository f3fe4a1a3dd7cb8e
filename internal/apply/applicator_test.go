package apply

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alirezadp10/ezapply/internal/match"
	"github.com/alirezadp10/ezapply/internal/model"
)

const (
	questionStepHTML = `<div data-test-modal><form>
		<label for="q-exp">Years of experience</label>
		<input id="q-exp" type="text">
	</form></div>`
	emptyStepHTML = `<div data-test-modal><form></form></div>`
)

type stubStep struct {
	html       string
	buttons    map[string]bool
	rejectNext bool // clicking next shows the error icon instead of advancing
}

type stubPage struct {
	steps  []stubStep
	idx    int
	iconOn bool
	clicks []string
}

func (p *stubPage) cur() stubStep {
	if p.idx < len(p.steps) {
		return p.steps[p.idx]
	}
	return stubStep{}
}

func (p *stubPage) Exists(_ context.Context, sel string) (bool, error) {
	if sel == selErrorIcon {
		return p.iconOn, nil
	}
	return p.cur().buttons[sel], nil
}

func (p *stubPage) ClickIfExists(_ context.Context, sel string) (bool, error) {
	if !p.cur().buttons[sel] {
		return false, nil
	}
	p.clicks = append(p.clicks, sel)
	switch sel {
	case selNext, selReview:
		if p.cur().rejectNext {
			p.iconOn = true
		} else {
			p.idx++
		}
	case selSubmit:
		p.idx++
	}
	return true, nil
}

func (p *stubPage) OuterHTML(_ context.Context, _ string) (string, error) {
	return p.cur().html, nil
}

func (p *stubPage) clicked(sel string) bool {
	for _, c := range p.clicks {
		if c == sel {
			return true
		}
	}
	return false
}

type stubFiller struct {
	filled map[string]string
	err    error
}

func (f *stubFiller) Fill(_ context.Context, field model.FormField, answer string) error {
	if f.err != nil {
		return f.err
	}
	if f.filled == nil {
		f.filled = make(map[string]string)
	}
	f.filled[field.Key()] = answer
	return nil
}

type stubAnswerer struct {
	calls int
	err   error
}

func (a *stubAnswerer) GenerateAnswers(_ context.Context, fields []model.FormField, _ string) ([]model.Answer, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	answers := make([]model.Answer, 0, len(fields))
	for _, f := range fields {
		answers = append(answers, model.Answer{FieldID: f.Key(), Label: f.Label, Text: "generated"})
	}
	return answers, nil
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

type memStore struct {
	history []model.StoredField
	saved   []model.StoredField
	results []model.ApplicationResult
}

func (s *memStore) HasApplied(string) (bool, error) { return false, nil }
func (s *memStore) SaveResult(res model.ApplicationResult) error {
	s.results = append(s.results, res)
	return nil
}
func (s *memStore) Results() ([]model.ApplicationResult, error) { return s.results, nil }
func (s *memStore) SaveField(f model.StoredField) error {
	s.saved = append(s.saved, f)
	return nil
}
func (s *memStore) Fields() ([]model.StoredField, error) { return s.history, nil }

func newTestApplicator(page *stubPage, filler *stubFiller, answers *stubAnswerer, embedder model.Embedder, st *memStore) *Applicator {
	opts := Options{Profile: "profile text", SimilarityThreshold: 0.95, MaxWizardSteps: 10}
	return NewApplicator(page, filler, answers, embedder, st, opts, testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var posting = model.JobPosting{ID: "4001", Title: "Go Developer", Company: "Acme", URL: "https://example.com/jobs/view/4001/"}

func TestApplySingleStep(t *testing.T) {
	page := &stubPage{steps: []stubStep{{
		html:    questionStepHTML,
		buttons: map[string]bool{selApplyButton: true, selSubmit: true},
	}}}
	filler := &stubFiller{}
	answers := &stubAnswerer{}
	st := &memStore{}

	res := newTestApplicator(page, filler, answers, &stubEmbedder{vec: []float32{1, 0}}, st).Apply(context.Background(), posting)

	if res.Status != model.StatusApplied {
		t.Fatalf("status = %q (%s), want applied", res.Status, res.Reason)
	}
	if filler.filled["q-exp"] != "generated" {
		t.Errorf("filled = %v", filler.filled)
	}
	if len(st.saved) != 1 || st.saved[0].Label != "Years of experience" {
		t.Errorf("saved fields = %+v", st.saved)
	}
	if st.saved[0].JobID != posting.ID {
		t.Errorf("saved field job id = %q", st.saved[0].JobID)
	}
}

func TestApplyMultiStep(t *testing.T) {
	page := &stubPage{steps: []stubStep{
		{html: questionStepHTML, buttons: map[string]bool{selApplyButton: true, selNext: true}},
		{html: emptyStepHTML, buttons: map[string]bool{selReview: true}},
		{html: emptyStepHTML, buttons: map[string]bool{selSubmit: true}},
	}}
	res := newTestApplicator(page, &stubFiller{}, &stubAnswerer{}, nil, &memStore{}).Apply(context.Background(), posting)
	if res.Status != model.StatusApplied {
		t.Fatalf("status = %q (%s), want applied", res.Status, res.Reason)
	}
	if !page.clicked(selNext) || !page.clicked(selReview) || !page.clicked(selSubmit) {
		t.Errorf("clicks = %v", page.clicks)
	}
}

func TestApplyReusesStoredAnswer(t *testing.T) {
	st := &memStore{history: []model.StoredField{{
		Label:     "Total years of experience",
		Value:     "5",
		Embedding: match.EncodeVec([]float32{1, 0}),
	}}}
	page := &stubPage{steps: []stubStep{{
		html:    questionStepHTML,
		buttons: map[string]bool{selApplyButton: true, selSubmit: true},
	}}}
	filler := &stubFiller{}
	answers := &stubAnswerer{err: errors.New("generator must not be called")}

	res := newTestApplicator(page, filler, answers, &stubEmbedder{vec: []float32{1, 0}}, st).Apply(context.Background(), posting)

	if res.Status != model.StatusApplied {
		t.Fatalf("status = %q (%s), want applied", res.Status, res.Reason)
	}
	if answers.calls != 0 {
		t.Errorf("generator called %d times", answers.calls)
	}
	if filler.filled["q-exp"] != "5" {
		t.Errorf("filled = %v, want stored value reused", filler.filled)
	}
}

func TestApplyGenerationFailure(t *testing.T) {
	page := &stubPage{steps: []stubStep{{
		html:    questionStepHTML,
		buttons: map[string]bool{selApplyButton: true, selSubmit: true, selDismiss: true, selDiscard: true},
	}}}
	answers := &stubAnswerer{err: &model.GenerationError{Err: context.DeadlineExceeded}}

	res := newTestApplicator(page, &stubFiller{}, answers, nil, &memStore{}).Apply(context.Background(), posting)

	if res.Status != model.StatusFailed {
		t.Fatalf("status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Reason, "generation") {
		t.Errorf("reason = %q", res.Reason)
	}
	if !page.clicked(selDismiss) || !page.clicked(selDiscard) {
		t.Errorf("wizard should be discarded, clicks = %v", page.clicks)
	}
}

func TestApplyUnsupportedField(t *testing.T) {
	page := &stubPage{steps: []stubStep{{
		html: `<div data-test-modal><form>
			<label for="q-color">Favorite color</label>
			<input id="q-color" type="color">
		</form></div>`,
		buttons: map[string]bool{selApplyButton: true, selDismiss: true, selDiscard: true},
	}}}
	res := newTestApplicator(page, &stubFiller{}, &stubAnswerer{}, nil, &memStore{}).Apply(context.Background(), posting)
	if res.Status != model.StatusSkipped {
		t.Fatalf("status = %q, want skipped", res.Status)
	}
	if !strings.Contains(res.Reason, "unsupported") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestApplyNoApplyButton(t *testing.T) {
	page := &stubPage{steps: []stubStep{{html: emptyStepHTML, buttons: map[string]bool{}}}}
	res := newTestApplicator(page, &stubFiller{}, &stubAnswerer{}, nil, &memStore{}).Apply(context.Background(), posting)
	if res.Status != model.StatusFailed {
		t.Fatalf("status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Reason, "apply button") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestApplyWizardStuck(t *testing.T) {
	page := &stubPage{steps: []stubStep{{
		html:    emptyStepHTML,
		buttons: map[string]bool{selApplyButton: true},
	}}}
	res := newTestApplicator(page, &stubFiller{}, &stubAnswerer{}, nil, &memStore{}).Apply(context.Background(), posting)
	if res.Status != model.StatusFailed {
		t.Fatalf("status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Reason, "stuck") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestApplyValidationErrors(t *testing.T) {
	page := &stubPage{steps: []stubStep{
		{
			html:       questionStepHTML,
			buttons:    map[string]bool{selApplyButton: true, selNext: true, selDismiss: true, selDiscard: true},
			rejectNext: true,
		},
	}}
	res := newTestApplicator(page, &stubFiller{}, &stubAnswerer{}, nil, &memStore{}).Apply(context.Background(), posting)
	if res.Status != model.StatusFailed {
		t.Fatalf("status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Reason, "validation") {
		t.Errorf("reason = %q", res.Reason)
	}
}
