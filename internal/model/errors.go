package model

import (
	"fmt"
	"time"
)

// AuthError means the session could not be authenticated: rejected
// credentials or a verification challenge that could not be automated.
// Unrecoverable; the run stops.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Reason)
}

// NavigationError wraps a page load failure. The current posting is skipped
// and the run continues.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// UnsupportedFieldError means a wizard step contains a widget the bot cannot
// represent. The posting is recorded as skipped, not retried.
type UnsupportedFieldError struct {
	Label string
	Kind  string
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("unsupported %s field %q", e.Kind, e.Label)
}

// GenerationError wraps an answer-generation failure (request, timeout, or
// response parse). The posting is logged as failed and not retried in-run.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SubmissionError means filling or submitting the form failed after answers
// were available.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("submission: %s", e.Reason)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
