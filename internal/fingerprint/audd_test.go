package fingerprint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tagscout/internal/recognize"
)

func tempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAudD_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart upload: %v", err)
		}
		if got := r.FormValue("api_token"); got != "audd-token" {
			t.Errorf("api_token = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"result": {
				"artist": "Daft Punk",
				"title": "One More Time",
				"album": "Discovery",
				"release_date": "2001-03-12",
				"song_link": "https://lis.tn/OneMoreTime",
				"spotify": {
					"external_urls": {"spotify": "https://open.spotify.com/track/x"},
					"album": {"images": [{"url": "https://i.scdn.co/image/cover"}]}
				},
				"apple_music": {"url": "https://music.apple.com/track/x"}
			}
		}`))
	}))
	defer srv.Close()

	c := &AudDClient{httpClient: srv.Client(), apiURL: srv.URL, apiToken: "audd-token", confidence: 0.9}
	results, err := c.Recognize(context.Background(), tempAudio(t))
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Artist != "Daft Punk" || r.Title != "One More Time" || r.Album != "Discovery" {
		t.Errorf("unexpected candidate: %+v", r)
	}
	if r.Year != "2001" {
		t.Errorf("Year = %q, want 2001", r.Year)
	}
	if r.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", r.Confidence)
	}
	if r.Source != recognize.SourceAudD {
		t.Errorf("Source = %q", r.Source)
	}
	if r.StreamingLinks["spotify"] == "" || r.StreamingLinks["apple_music"] == "" || r.StreamingLinks["audd"] == "" {
		t.Errorf("StreamingLinks = %v", r.StreamingLinks)
	}
	if r.CoverURL != "https://i.scdn.co/image/cover" {
		t.Errorf("CoverURL = %q", r.CoverURL)
	}
}

func TestAudD_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "result": null}`))
	}))
	defer srv.Close()

	c := &AudDClient{httpClient: srv.Client(), apiURL: srv.URL, apiToken: "t", confidence: 0.9}
	results, err := c.Recognize(context.Background(), tempAudio(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestAudD_MissingToken(t *testing.T) {
	c := NewAudD("", 0)
	if _, err := c.Recognize(context.Background(), "song.mp3"); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestNewAudD_DefaultConfidence(t *testing.T) {
	if c := NewAudD("t", 0); c.confidence != defaultAudDConfidence {
		t.Errorf("confidence = %v, want %v", c.confidence, defaultAudDConfidence)
	}
	if c := NewAudD("t", 0.85); c.confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", c.confidence)
	}
}
