package discogs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tagscout/internal/recognize"

	"golang.org/x/time/rate"
)

func newTestClient(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiURL:     url,
		token:      "test-token",
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestSearchTrack_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/database/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Discogs token=test-token" {
			t.Errorf("Authorization = %q", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [{
				"id": 42,
				"title": "Nirvana - Nevermind",
				"year": "1991",
				"genre": ["Rock"],
				"style": ["Grunge"],
				"cover_image": "http://img.discogs.com/cover.jpg"
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	results, err := c.SearchTrack(context.Background(), recognize.Query{Artist: "Nirvana", Title: "Lithium"})
	if err != nil {
		t.Fatalf("SearchTrack() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Artist != "Nirvana" || r.Album != "Nevermind" {
		t.Errorf("release title split wrong: %+v", r)
	}
	if r.Title != "Lithium" {
		t.Errorf("Title = %q, want query title", r.Title)
	}
	if r.Year != "1991" {
		t.Errorf("Year = %q", r.Year)
	}
	// Styles first, they are more specific than genres.
	if r.Genre != "Grunge" {
		t.Errorf("Genre = %q, want %q", r.Genre, "Grunge")
	}
	if !strings.HasPrefix(r.CoverURL, "https://") {
		t.Errorf("CoverURL not upgraded to https: %q", r.CoverURL)
	}
	if r.Source != recognize.SourceDiscogs {
		t.Errorf("Source = %q", r.Source)
	}
}

func TestSearchTrack_MissingToken(t *testing.T) {
	c := newTestClient("http://unused")
	c.token = ""

	if _, err := c.SearchTrack(context.Background(), recognize.Query{Title: "Test"}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestSearchReleases_FetchesTrackLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/database/search":
			w.Write([]byte(`{"results": [{"id": 42, "title": "Nirvana - Nevermind"}]}`))
		case "/releases/42":
			w.Write([]byte(`{
				"id": 42,
				"title": "Nevermind",
				"year": 1991,
				"artists": [{"name": "Nirvana"}],
				"tracklist": [
					{"position": "1", "title": "Smells Like Teen Spirit", "duration": "5:01"},
					{"position": "2", "title": "In Bloom", "duration": "4:15"}
				]
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	releases, err := c.SearchReleases(context.Background(), "Nirvana", 5)
	if err != nil {
		t.Fatalf("SearchReleases() error: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(releases))
	}

	rel := releases[0]
	if rel.Title != "Nevermind" || rel.Artist != "Nirvana" || rel.Year != "1991" {
		t.Errorf("unexpected release: %+v", rel)
	}
	if rel.TrackCount != 2 {
		t.Fatalf("TrackCount = %d, want 2", rel.TrackCount)
	}
	if rel.Tracks[0].DurationSeconds != 301 {
		t.Errorf("DurationSeconds = %d, want 301", rel.Tracks[0].DurationSeconds)
	}
	if rel.ExternalID != "42" {
		t.Errorf("ExternalID = %q", rel.ExternalID)
	}
}

func TestSplitReleaseTitle(t *testing.T) {
	tests := []struct {
		in, artist, album string
	}{
		{"Nirvana - Nevermind", "Nirvana", "Nevermind"},
		{"Various - Grunge Box - Disc 1", "Various", "Grunge Box - Disc 1"},
		{"Nevermind", "", "Nevermind"},
	}

	for _, tt := range tests {
		artist, album := splitReleaseTitle(tt.in)
		if artist != tt.artist || album != tt.album {
			t.Errorf("splitReleaseTitle(%q) = %q, %q, want %q, %q", tt.in, artist, album, tt.artist, tt.album)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3:05", 185},
		{"0:59", 59},
		{"", 0},
		{"bad", 0},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
