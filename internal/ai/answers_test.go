package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alirezadp10/ezapply/internal/model"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response string
	err      error
	prompt   string // captures the last prompt
}

func (m *mockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func newTestAnswerer(provider LLMProvider) *Answerer {
	return NewAnswerer(provider, FormAnswersTemplate, nil)
}

func TestGenerateAnswers_TwoFieldScenario(t *testing.T) {
	provider := &mockProvider{
		response: `[{"id":"exp","label":"Years of experience","answer":"5"},
			{"id":"rel","label":"Relocate?","answer":"No"}]`,
	}
	fields := []model.FormField{
		{ID: "exp", Label: "Years of experience", Kind: model.FieldText},
		{ID: "rel", Label: "Relocate?", Kind: model.FieldRadio, Options: []string{"Yes", "No"}},
	}

	answers, err := newTestAnswerer(provider).GenerateAnswers(context.Background(),
		fields, "5 years backend experience, not open to relocation")
	if err != nil {
		t.Fatalf("GenerateAnswers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}
	if answers[0].FieldID != "exp" || answers[0].Text != "5" {
		t.Errorf("answer[0] = %+v", answers[0])
	}
	if answers[1].FieldID != "rel" || answers[1].Text != "No" {
		t.Errorf("answer[1] = %+v", answers[1])
	}
	if !strings.Contains(provider.prompt, "not open to relocation") {
		t.Error("prompt should embed the profile text")
	}
	if !strings.Contains(provider.prompt, "Relocate?") {
		t.Error("prompt should embed the field labels")
	}
}

func TestGenerateAnswers_CodeFencedResponse(t *testing.T) {
	provider := &mockProvider{
		response: "```json\n[{\"id\":\"q1\",\"label\":\"Notice period\",\"answer\":\"30\"}]\n```",
	}
	fields := []model.FormField{{ID: "q1", Label: "Notice period", Kind: model.FieldText}}

	answers, err := newTestAnswerer(provider).GenerateAnswers(context.Background(), fields, "profile")
	if err != nil {
		t.Fatalf("GenerateAnswers: %v", err)
	}
	if len(answers) != 1 || answers[0].Text != "30" {
		t.Errorf("answers = %+v", answers)
	}
}

func TestGenerateAnswers_LabelFallbackMatch(t *testing.T) {
	// Model drops the id; matching must fall back to the label.
	provider := &mockProvider{
		response: `[{"label":"Desired salary","answer":"90000"}]`,
	}
	fields := []model.FormField{{ID: "sal", Label: "Desired salary", Kind: model.FieldText}}

	answers, err := newTestAnswerer(provider).GenerateAnswers(context.Background(), fields, "profile")
	if err != nil {
		t.Fatalf("GenerateAnswers: %v", err)
	}
	if len(answers) != 1 || answers[0].FieldID != "sal" || answers[0].Text != "90000" {
		t.Errorf("answers = %+v", answers)
	}
}

func TestGenerateAnswers_ProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("timeout")}
	fields := []model.FormField{{ID: "q1", Label: "Anything", Kind: model.FieldText}}

	_, err := newTestAnswerer(provider).GenerateAnswers(context.Background(), fields, "profile")
	var genErr *model.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "generation") {
		t.Errorf("error should mention generation, got %q", err)
	}
}

func TestGenerateAnswers_GarbageResponse(t *testing.T) {
	provider := &mockProvider{response: "I could not help with that."}
	fields := []model.FormField{{ID: "q1", Label: "Anything", Kind: model.FieldText}}

	_, err := newTestAnswerer(provider).GenerateAnswers(context.Background(), fields, "profile")
	var genErr *model.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
}

func TestGenerateAnswers_NoFields(t *testing.T) {
	provider := &mockProvider{}
	answers, err := newTestAnswerer(provider).GenerateAnswers(context.Background(), nil, "profile")
	if err != nil || answers != nil {
		t.Errorf("want nil, nil for empty fields; got %v, %v", answers, err)
	}
	if provider.prompt != "" {
		t.Error("provider should not be called for empty fields")
	}
}

func TestRelevanceChecker(t *testing.T) {
	cases := []struct {
		response string
		want     bool
	}{
		{"yes", true},
		{"Yes.", true},
		{" YES ", true},
		{"no", false},
		{"It depends on the team.", false},
	}
	for _, tc := range cases {
		checker := NewRelevanceChecker(&mockProvider{response: tc.response}, RelevanceTemplate, []string{"go", "backend"})
		got, err := checker.IsRelevant(context.Background(), "Senior Go Engineer")
		if err != nil {
			t.Fatalf("IsRelevant(%q): %v", tc.response, err)
		}
		if got != tc.want {
			t.Errorf("IsRelevant with response %q = %v, want %v", tc.response, got, tc.want)
		}
	}
}
