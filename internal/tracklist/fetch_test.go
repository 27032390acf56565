package tracklist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franz/narrative-db/internal/util"
)

func newShowServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/show-1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, showPage)
	})
	mux.HandleFunc("/no-tracklist/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>coming soon</body></html>")
	})
	mux.HandleFunc("/empty/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="tracklist"><table></table></div>`)
	})
	mux.HandleFunc("/gone/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newShowServer(t)
	f := NewHTTPFetcher(5*time.Second, "test-agent", util.NoRetry())

	body, err := f.Fetch(context.Background(), srv.URL+"/show-1/")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != showPage {
		t.Error("expected page body to be returned unchanged")
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/gone/")
	if !errors.Is(err, util.ErrTransport) {
		t.Errorf("expected ErrTransport for 404, got %v", err)
	}
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("expected user agent header, got %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	retry := &util.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	f := NewHTTPFetcher(5*time.Second, "test-agent", retry)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "ok" {
		t.Errorf("expected 'ok', got %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

type stubFetcher struct {
	pages map[string]string
	delay map[string]time.Duration
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if d, ok := s.delay[url]; ok {
		time.Sleep(d)
	}
	body, ok := s.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", util.ErrTransport, url)
	}
	return body, nil
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{"a": "A", "b": "B", "c": "C"},
		delay: map[string]time.Duration{"a": 30 * time.Millisecond},
	}

	pages := FetchAll(context.Background(), f, []string{"a", "missing", "b", "c"})

	if len(pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(pages))
	}
	wantBodies := []string{"A", "", "B", "C"}
	for i, p := range pages {
		if p.Body != wantBodies[i] {
			t.Errorf("page %d: expected body %q, got %q", i, wantBodies[i], p.Body)
		}
	}
	if pages[1].Err == nil {
		t.Error("expected error for missing page")
	}
	if pages[0].Err != nil || pages[2].Err != nil {
		t.Error("expected a failed page not to affect the others")
	}
}

func TestHarvest(t *testing.T) {
	srv := newShowServer(t)
	f := NewHTTPFetcher(5*time.Second, "", util.NoRetry())

	urls := []string{
		srv.URL + "/show-1/",
		srv.URL + "/gone/",
		srv.URL + "/no-tracklist/",
		srv.URL + "/empty/",
	}

	result := Harvest(context.Background(), f, urls, nil)

	if result.PagesFetched != 3 {
		t.Errorf("expected 3 pages fetched, got %d", result.PagesFetched)
	}
	if result.PagesFailed != 1 {
		t.Errorf("expected 1 failed page, got %d", result.PagesFailed)
	}
	if result.PagesNoStructure != 1 {
		t.Errorf("expected 1 page without tracklist, got %d", result.PagesNoStructure)
	}
	if result.PagesEmpty != 1 {
		t.Errorf("expected 1 empty page, got %d", result.PagesEmpty)
	}
	if len(result.Candidates) != 5 {
		t.Errorf("expected 5 candidates, got %d", len(result.Candidates))
	}
	for _, c := range result.Candidates {
		if c.ShowSource != urls[0] {
			t.Errorf("expected candidates from %s, got %s", urls[0], c.ShowSource)
		}
	}
}
