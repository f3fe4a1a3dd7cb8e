package search

import (
	"fmt"
	"net/url"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

// workTypeCode maps a work type to the site's f_WT filter value.
func workTypeCode(wt model.WorkType) string {
	switch wt {
	case model.WorkTypeOnsite:
		return "1"
	case model.WorkTypeRemote:
		return "2"
	case model.WorkTypeHybrid:
		return "3"
	}
	return ""
}

// BuildURL assembles a job search URL restricted to the keyword, region,
// work type, and recency window. Only the requested filters appear in the
// query string, so the host site never returns postings outside them.
func BuildURL(base, keyword, geoID string, wt model.WorkType, window time.Duration) string {
	params := url.Values{}
	params.Set("keywords", keyword)
	if geoID != "" {
		params.Set("geoId", geoID)
	}
	if code := workTypeCode(wt); code != "" {
		params.Set("f_WT", code)
	}
	if secs := int(window.Seconds()); secs > 0 {
		// f_TPR=r<seconds> means "posted in the last <seconds>".
		params.Set("f_TPR", fmt.Sprintf("r%d", secs))
	}
	return base + "/jobs/search?" + params.Encode()
}

// PostingURL returns the direct view URL for a posting id.
func PostingURL(base, jobID string) string {
	return fmt.Sprintf("%s/jobs/view/%s/", base, jobID)
}
