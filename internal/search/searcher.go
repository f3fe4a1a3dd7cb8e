package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Page is the slice of the browser session the searcher needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	OuterHTML(ctx context.Context, sel string) (string, error)
}

// Searcher implements model.JobSearcher by driving the browser to the search
// results page and scraping the rendered cards.
type Searcher struct {
	page     Page
	baseURL  string
	workType model.WorkType
	window   time.Duration
	logger   *slog.Logger
}

// NewSearcher creates a searcher bound to one browser session.
func NewSearcher(page Page, baseURL string, workType model.WorkType, window time.Duration, logger *slog.Logger) *Searcher {
	return &Searcher{
		page:     page,
		baseURL:  baseURL,
		workType: workType,
		window:   window,
		logger:   logger,
	}
}

// Search loads the results page for keyword/geoID and returns the postings
// that expose the quick-apply affordance. An empty page is an empty slice,
// not an error.
func (s *Searcher) Search(ctx context.Context, keyword, geoID string) ([]model.JobPosting, error) {
	url := BuildURL(s.baseURL, keyword, geoID, s.workType, s.window)
	if err := s.page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	html, err := s.page.OuterHTML(ctx, "body")
	if err != nil {
		return nil, err
	}

	if HasNoResults(html) {
		s.logger.Info("no results", "keyword", keyword, "geo_id", geoID)
		return nil, nil
	}

	cards, err := ParseCards(html, s.baseURL)
	if err != nil {
		return nil, err
	}

	var postings []model.JobPosting
	for _, p := range cards {
		if p.EasyApply {
			postings = append(postings, p)
		}
	}

	s.logger.Info("searched",
		"keyword", keyword,
		"geo_id", geoID,
		"cards", len(cards),
		"easy_apply", len(postings),
	)
	return postings, nil
}
