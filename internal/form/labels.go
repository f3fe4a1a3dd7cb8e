package form

import (
	"regexp"
	"strings"
)

var requiredRe = regexp.MustCompile(`(?i)\bRequired\b`)

// CleanLabel normalizes a question label scraped from the wizard: strips the
// "Required" marker, collapses whitespace, and removes the duplicated text
// the site renders for screen readers.
func CleanLabel(text string) string {
	text = requiredRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	text = dedupeHalves(text)
	return dedupeFragments(text)
}

// dedupeHalves removes whole-label repetition ("Email Email" -> "Email").
func dedupeHalves(text string) string {
	words := strings.Fields(text)
	n := len(words)
	if n < 2 || n%2 != 0 {
		return text
	}
	first := strings.Join(words[:n/2], " ")
	second := strings.Join(words[n/2:], " ")
	if strings.EqualFold(first, second) {
		return first
	}
	return text
}

// dedupeFragments drops repeated sentences or fragments, keeping first
// occurrences in order.
func dedupeFragments(text string) string {
	parts := splitFragments(text)
	if len(parts) < 2 {
		return text
	}
	seen := make(map[string]bool, len(parts))
	var unique []string
	for _, part := range parts {
		cleaned := strings.TrimSpace(part)
		key := strings.ToLower(cleaned)
		if cleaned != "" && !seen[key] {
			seen[key] = true
			unique = append(unique, cleaned)
		}
	}
	return strings.Join(unique, " ")
}

// splitFragments splits after sentence punctuation and newlines.
func splitFragments(text string) []string {
	var (
		parts []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '?', '!':
			if i+1 < len(runes) && runes[i+1] == ' ' {
				parts = append(parts, string(runes[start:i+1]))
				start = i + 2
				i++
			}
		case '\n':
			parts = append(parts, string(runes[start:i]))
			start = i + 1
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}
