package tracklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/franz/narrative-db/internal/report"
	"github.com/franz/narrative-db/internal/util"
	"github.com/sourcegraph/conc/iter"
)

// Fetcher retrieves the raw markup of one page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP, retrying transient failures
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	retry      *util.RetryConfig
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout
func NewHTTPFetcher(timeout time.Duration, userAgent string, retry *util.RetryConfig) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		retry:      retry,
	}
}

// Fetch performs a GET request and returns the body. Non-200 responses are
// errors; every error wraps util.ErrTransport.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := util.RetryWithBackoff(ctx, f.retry, func(ctx context.Context) (string, error) {
		return f.get(ctx, url)
	}, "fetch "+url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrTransport, err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &util.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Page is the outcome of fetching one URL. A failed fetch has an empty Body
// and a non-nil Err.
type Page struct {
	URL  string
	Body string
	Err  error
}

// FetchAll issues every fetch concurrently and waits for all of them.
// Results are in the same order as urls; a failure never cancels the others.
func FetchAll(ctx context.Context, f Fetcher, urls []string) []Page {
	mapper := iter.Mapper[string, Page]{MaxGoroutines: len(urls)}
	return mapper.Map(urls, func(url *string) Page {
		body, err := f.Fetch(ctx, *url)
		if err != nil {
			return Page{URL: *url, Err: err}
		}
		return Page{URL: *url, Body: body}
	})
}

// HarvestResult summarises a fetch-and-extract run
type HarvestResult struct {
	Candidates       []Candidate
	PagesFetched     int
	PagesFailed      int
	PagesNoStructure int
	PagesEmpty       int
	BytesFetched     int64
}

// Harvest fetches every URL, then extracts tracks from the pages one by one
// in URL order. Transport failures and pages without a tracklist are
// counted and logged; they never abort the batch.
func Harvest(ctx context.Context, f Fetcher, urls []string, logger *report.EventLogger) *HarvestResult {
	result := &HarvestResult{}

	pages := FetchAll(ctx, f, urls)

	for _, page := range pages {
		if page.Err != nil {
			result.PagesFailed++
			util.WarnLog("Error fetching %s: %v", page.URL, page.Err)
			logger.LogFetch(page.URL, 0, page.Err)
			continue
		}
		result.PagesFetched++
		result.BytesFetched += int64(len(page.Body))
		logger.LogFetch(page.URL, int64(len(page.Body)), nil)

		candidates, err := Extract(page.Body, page.URL)
		if err != nil {
			if errors.Is(err, util.ErrStructureNotFound) {
				result.PagesNoStructure++
			}
			util.WarnLog("Tracklist not found in %s", page.URL)
			logger.LogExtract(page.URL, 0, err)
			continue
		}
		if len(candidates) == 0 {
			result.PagesEmpty++
			util.WarnLog("No tracks found in %s", page.URL)
		} else {
			util.DebugLog("Extracted %d tracks from %s", len(candidates), page.URL)
		}
		logger.LogExtract(page.URL, len(candidates), nil)

		result.Candidates = append(result.Candidates, candidates...)
	}

	return result
}
