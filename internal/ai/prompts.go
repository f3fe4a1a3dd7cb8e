package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/form_answers.md
var formAnswersPromptRaw string

//go:embed prompts/relevance.md
var relevancePromptRaw string

// FormAnswersTemplate is the parsed prompt template for form answer
// generation. Parsed once at package init; reused on every request.
var FormAnswersTemplate = template.Must(template.New("form_answers").Parse(formAnswersPromptRaw))

// RelevanceTemplate is the parsed prompt template for the yes/no job title
// relevance check.
var RelevanceTemplate = template.Must(template.New("relevance").Parse(relevancePromptRaw))
