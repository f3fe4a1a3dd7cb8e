package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// RelevanceChecker asks the LLM whether a posting title matches the user's
// configured keywords. Used as a cheap gate before opening a posting.
type RelevanceChecker struct {
	provider LLMProvider
	tmpl     *template.Template
	keywords string
}

// NewRelevanceChecker creates a checker for the given keyword list.
func NewRelevanceChecker(provider LLMProvider, tmpl *template.Template, keywords []string) *RelevanceChecker {
	return &RelevanceChecker{
		provider: provider,
		tmpl:     tmpl,
		keywords: strings.Join(keywords, ", "),
	}
}

// IsRelevant returns true when the model answers "yes" for the title.
func (r *RelevanceChecker) IsRelevant(ctx context.Context, title string) (bool, error) {
	var promptBuf bytes.Buffer
	if err := r.tmpl.Execute(&promptBuf, struct {
		Title    string
		Keywords string
	}{Title: title, Keywords: r.keywords}); err != nil {
		return false, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := r.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(raw))
	answer = strings.TrimRight(answer, ".!")
	return answer == "yes", nil
}
