package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Selectors for the search results page. The host site's DOM is unversioned;
// when a scrape comes back empty these are the first thing to re-check.
const (
	selJobCard         = "div[data-job-id]"
	selCardTitle       = `.job-card-list__title--link span[aria-hidden="true"]`
	selCardCompany     = ".artdeco-entity-lockup__subtitle"
	selNoResultsBanner = ".jobs-search-no-results-banner"

	easyApplyMarker = "Easy Apply"
)

// HasNoResults reports whether the page HTML shows the empty-results banner.
func HasNoResults(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(selNoResultsBanner).Length() > 0
}

// ParseCards extracts job postings from rendered search results HTML.
// Cards without a numeric id are dropped; the EasyApply flag reflects the
// in-card marker text.
func ParseCards(html, baseURL string) ([]model.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var postings []model.JobPosting
	doc.Find(selJobCard).Each(func(_ int, card *goquery.Selection) {
		id, ok := card.Attr("data-job-id")
		if !ok || !isNumeric(id) || seen[id] {
			return
		}
		seen[id] = true

		title := cleanText(card.Find(selCardTitle).First().Text())
		if title == "" {
			// Some card variants put the title directly on the link.
			title = cleanText(card.Find("a").First().Text())
		}
		company := cleanText(card.Find(selCardCompany).First().Text())

		postings = append(postings, model.JobPosting{
			ID:        id,
			Title:     title,
			Company:   company,
			URL:       PostingURL(baseURL, id),
			EasyApply: strings.Contains(card.Text(), easyApplyMarker),
		})
	})
	return postings, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
