package fingerprint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tagscout/internal/recognize"
)

func TestAcoustID_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("client"); got != "acoustid-key" {
			t.Errorf("client = %q", got)
		}
		if r.URL.Query().Get("fingerprint") == "" {
			t.Error("missing fingerprint parameter")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"results": [
				{
					"id": "res-1",
					"score": 0.97,
					"recordings": [{
						"id": "rec-1",
						"title": "One More Time",
						"artists": [{"id": "a1", "name": "Daft Punk"}],
						"releases": [{"id": "rel-1", "title": "Discovery"}]
					}]
				},
				{
					"id": "res-2",
					"score": 0.41,
					"recordings": [{"id": "rec-2", "title": "Low Quality Match", "artists": [{"name": "Someone"}]}]
				}
			]
		}`))
	}))
	defer srv.Close()

	calc := &Calculator{bin: fakeFpcalc(t, `{"duration": 240, "fingerprint": "AQAAA"}`), timeout: 5 * time.Second}
	c := &AcoustIDClient{
		httpClient: srv.Client(),
		apiURL:     srv.URL,
		apiKey:     "acoustid-key",
		calc:       calc,
	}

	results, err := c.Recognize(context.Background(), "song.mp3")
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}

	// The 0.41 result is below the score floor.
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Artist != "Daft Punk" || r.Title != "One More Time" || r.Album != "Discovery" {
		t.Errorf("unexpected candidate: %+v", r)
	}
	if r.Confidence != 0.97 {
		t.Errorf("Confidence = %v, want 0.97", r.Confidence)
	}
	if r.Source != recognize.SourceAcoustID {
		t.Errorf("Source = %q", r.Source)
	}
	if r.RecordingID != "rec-1" || r.ReleaseID != "rel-1" {
		t.Errorf("identifiers lost: %+v", r)
	}
}

func TestAcoustID_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "error": {"message": "invalid fingerprint"}}`))
	}))
	defer srv.Close()

	calc := &Calculator{bin: fakeFpcalc(t, `{"duration": 240, "fingerprint": "AQAAA"}`), timeout: 5 * time.Second}
	c := &AcoustIDClient{httpClient: srv.Client(), apiURL: srv.URL, apiKey: "k", calc: calc}

	if _, err := c.Recognize(context.Background(), "song.mp3"); err == nil {
		t.Fatal("expected error for error status")
	}
}

func TestAcoustID_MissingKey(t *testing.T) {
	c := NewAcoustID("", NewCalculator())
	if _, err := c.Recognize(context.Background(), "song.mp3"); err == nil {
		t.Fatal("expected error without api key")
	}
}
