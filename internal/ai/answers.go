package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Answerer implements model.AnswerGenerator on top of an LLMProvider.
// One request covers every unanswered field of a wizard step.
type Answerer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewAnswerer creates an answer generator using the given provider and
// prompt template (normally FormAnswersTemplate).
func NewAnswerer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *Answerer {
	return &Answerer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// promptEntry is the JSON shape each field takes inside the prompt. The id
// round-trips through the model so answers match back on a stable key even
// when the model rewrites label text.
type promptEntry struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
}

// GenerateAnswers sends one request combining all field prompts with the
// profile text and matches the response back per field. Failures of the
// request or the response parse surface as *model.GenerationError.
func (a *Answerer) GenerateAnswers(ctx context.Context, fields []model.FormField, profile string) ([]model.Answer, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	entries := make([]promptEntry, 0, len(fields))
	for _, f := range fields {
		entries = append(entries, promptEntry{
			ID:      f.Key(),
			Label:   f.Label,
			Options: f.Options,
		})
	}
	fieldsJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, &model.GenerationError{Err: fmt.Errorf("marshal fields: %w", err)}
	}

	var promptBuf bytes.Buffer
	if err := a.tmpl.Execute(&promptBuf, struct {
		Profile string
		Fields  string
	}{Profile: profile, Fields: string(fieldsJSON)}); err != nil {
		return nil, &model.GenerationError{Err: fmt.Errorf("render prompt: %w", err)}
	}

	raw, err := a.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return nil, &model.GenerationError{Err: err}
	}

	parsed, err := parseAnswerArray(raw)
	if err != nil {
		return nil, &model.GenerationError{Err: err}
	}

	answers := matchAnswers(fields, parsed)
	if a.logger != nil {
		a.logger.Debug("generated answers", "fields", len(fields), "answered", len(answers))
	}
	return answers, nil
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// parseAnswerArray extracts the first JSON array from free-form model output.
// Tolerates markdown code fences and stray newlines inside the array.
func parseAnswerArray(raw string) ([]promptEntry, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	candidate := jsonArrayRe.FindString(cleaned)
	if candidate == "" {
		return nil, fmt.Errorf("no JSON array in llm response")
	}

	var entries []promptEntry
	if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
		// Some models break string literals across lines; retry flattened.
		flat := strings.NewReplacer("\r", "", "\n", "").Replace(candidate)
		if err2 := json.Unmarshal([]byte(flat), &entries); err2 != nil {
			return nil, fmt.Errorf("unmarshal answer array: %w", err)
		}
	}
	return entries, nil
}

// matchAnswers pairs parsed entries back to fields by id first, label second.
func matchAnswers(fields []model.FormField, entries []promptEntry) []model.Answer {
	byID := make(map[string]promptEntry, len(entries))
	byLabel := make(map[string]promptEntry, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			byID[e.ID] = e
		}
		if e.Label != "" {
			byLabel[strings.ToLower(e.Label)] = e
		}
	}

	var answers []model.Answer
	for _, f := range fields {
		entry, ok := byID[f.Key()]
		if !ok {
			entry, ok = byLabel[strings.ToLower(f.Label)]
		}
		if !ok || entry.Answer == "" {
			continue
		}
		answers = append(answers, model.Answer{
			FieldID: f.Key(),
			Label:   f.Label,
			Text:    strings.TrimSpace(entry.Answer),
		})
	}
	return answers
}
