// Package retry wraps answer generation with bounded retries so a flaky
// inference endpoint does not sink a whole application.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

// RetryAnswerer decorates a model.AnswerGenerator. Transient failures are
// retried with exponential backoff; anything the endpoint rejected outright
// comes back immediately.
type RetryAnswerer struct {
	inner      model.AnswerGenerator
	maxRetries int // attempts beyond the first
	baseDelay  time.Duration
	logger     *slog.Logger
}

func NewRetryAnswerer(inner model.AnswerGenerator, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryAnswerer {
	return &RetryAnswerer{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// GenerateAnswers delegates to the wrapped generator, sleeping between
// attempts. The last error is returned once the budget is spent.
func (r *RetryAnswerer) GenerateAnswers(ctx context.Context, fields []model.FormField, profile string) ([]model.Answer, error) {
	for attempt := 0; ; attempt++ {
		answers, err := r.inner.GenerateAnswers(ctx, fields, profile)
		if err == nil {
			return answers, nil
		}
		if !transient(err) || attempt == r.maxRetries {
			return nil, err
		}

		delay := r.nextDelay(attempt, err)
		r.logger.Warn("answer generation failed, will retry",
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

// nextDelay doubles the base delay per attempt already made and spreads it
// with up to 30% jitter either way. A server-sent Retry-After wins over the
// computed value.
func (r *RetryAnswerer) nextDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := r.baseDelay << attempt
	jitter := (rand.Float64()*2 - 1) * 0.3
	return time.Duration(float64(delay) * (1 + jitter))
}

// transient reports whether another attempt could plausibly succeed.
// Rate limiting and server errors qualify; a cancelled context or a 4xx
// rejection of the request itself does not. Errors with no HTTP status
// (connection resets, timeouts) are assumed transient.
func transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return true
}
