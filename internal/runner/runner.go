// Package runner drives search cycles: it fans the configured keywords over
// the configured regions, walks each discovered posting, and records the
// outcome exactly once.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

// ErrDailyLimit ends a cycle early when the site refuses further quick
// applications for the day. The scheduler keeps running; the next cycle
// starts after the regular interval.
var ErrDailyLimit = errors.New("daily application limit reached")

const (
	expiredBanner = "No longer accepting applications"
	limitBanner   = "Easy Apply application limit"
)

// Region pairs a display name with the site's region identifier.
type Region struct {
	Name  string
	GeoID string
}

// Page is the navigation slice of the browser session the runner needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	BodyContains(ctx context.Context, needle string) (bool, error)
}

// RelevanceGate optionally filters postings by title before applying.
type RelevanceGate interface {
	IsRelevant(ctx context.Context, title string) (bool, error)
}

// Params wires a Runner. Relevance may be nil to apply to every posting.
type Params struct {
	Searcher   model.JobSearcher
	Applicator model.JobApplicator
	Page       Page
	Store      model.ResultStore
	Notifier   model.Notifier
	Relevance  RelevanceGate
	Keywords   []string
	Regions    []Region
	Logger     *slog.Logger
}

type Runner struct {
	searcher   model.JobSearcher
	applicator model.JobApplicator
	page       Page
	store      model.ResultStore
	notifier   model.Notifier
	relevance  RelevanceGate
	keywords   []string
	regions    []Region
	logger     *slog.Logger
}

func New(p Params) *Runner {
	return &Runner{
		searcher:   p.Searcher,
		applicator: p.Applicator,
		page:       p.Page,
		store:      p.Store,
		notifier:   p.Notifier,
		relevance:  p.Relevance,
		keywords:   p.Keywords,
		regions:    p.Regions,
		logger:     p.Logger,
	}
}

// Cycle runs one full pass over every region/keyword pair. A search failure
// skips that pair; the daily limit banner ends the cycle with ErrDailyLimit.
// The summary is always reported, even on early exit. A posting gets at most
// one attempt and one recorded result per cycle, no matter how many
// region/keyword searches surface it.
func (r *Runner) Cycle(ctx context.Context) (model.CycleSummary, error) {
	start := time.Now()
	var summary model.CycleSummary
	seen := make(map[string]bool)
	defer func() {
		summary.Duration = time.Since(start)
		if err := r.notifier.NotifyCycle(summary); err != nil {
			r.logger.Error("notify cycle", "error", err)
		}
	}()

	for _, region := range r.regions {
		for _, keyword := range r.keywords {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			postings, err := r.searcher.Search(ctx, keyword, region.GeoID)
			if err != nil {
				r.logger.Error("search failed",
					"keyword", keyword, "region", region.Name, "error", err)
				continue
			}
			summary.Searched += len(postings)

			for _, posting := range postings {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				if seen[posting.ID] {
					r.logger.Debug("already attempted this cycle", "job_id", posting.ID)
					continue
				}
				seen[posting.ID] = true
				hitLimit, err := r.process(ctx, posting, &summary)
				if err != nil {
					return summary, err
				}
				if hitLimit {
					r.logger.Warn("daily application limit reached, ending cycle")
					return summary, ErrDailyLimit
				}
			}
		}
	}
	return summary, nil
}

// process handles one posting to a terminal outcome. hitLimit reports the
// daily limit banner; err is only a cancelled context.
func (r *Runner) process(ctx context.Context, posting model.JobPosting, summary *model.CycleSummary) (hitLimit bool, err error) {
	applied, err := r.store.HasApplied(posting.ID)
	if err != nil {
		r.logger.Error("applied lookup", "job_id", posting.ID, "error", err)
	} else if applied {
		r.logger.Debug("already applied", "job_id", posting.ID)
		return false, nil
	}

	if r.relevance != nil {
		relevant, err := r.relevance.IsRelevant(ctx, posting.Title)
		switch {
		case err != nil:
			// A failed check does not block the posting.
			r.logger.Warn("relevance check failed", "job_id", posting.ID, "error", err)
		case !relevant:
			r.record(posting.Result(model.StatusSkipped, "title not relevant to configured keywords"), summary)
			return false, nil
		}
	}

	if err := r.page.Navigate(ctx, posting.URL); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		r.record(posting.Result(model.StatusSkipped, err.Error()), summary)
		return false, nil
	}

	if expired, err := r.page.BodyContains(ctx, expiredBanner); err == nil && expired {
		r.record(posting.Result(model.StatusSkipped, "posting no longer accepts applications"), summary)
		return false, nil
	}
	if limited, err := r.page.BodyContains(ctx, limitBanner); err == nil && limited {
		return true, nil
	}

	r.record(r.applicator.Apply(ctx, posting), summary)
	return false, nil
}

func (r *Runner) record(res model.ApplicationResult, summary *model.CycleSummary) {
	switch res.Status {
	case model.StatusApplied:
		summary.Applied++
	case model.StatusFailed:
		summary.Failed++
	case model.StatusSkipped:
		summary.Skipped++
	}
	if err := r.store.SaveResult(res); err != nil {
		r.logger.Error("save result", "job_id", res.JobID, "error", err)
	}
}
