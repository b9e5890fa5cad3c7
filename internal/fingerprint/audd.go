package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tagscout/internal/recognize"
)

// defaultAudDConfidence is reported for AudD matches. The service does
// not expose a match score, but its recognition is reliable enough to
// trust near-fully.
const defaultAudDConfidence = 0.9

// AudDClient recognizes songs by uploading audio to the AudD music
// recognition service.
type AudDClient struct {
	httpClient *http.Client
	apiURL     string
	apiToken   string
	confidence float64
}

// NewAudD creates an AudD client. confidence overrides the default
// fixed match confidence when > 0.
func NewAudD(apiToken string, confidence float64) *AudDClient {
	if confidence <= 0 {
		confidence = defaultAudDConfidence
	}
	return &AudDClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     "https://api.audd.io/",
		apiToken:   apiToken,
		confidence: confidence,
	}
}

// Recognize uploads the file and returns the identified song, if any.
func (c *AudDClient) Recognize(ctx context.Context, path string) ([]recognize.Candidate, error) {
	if c.apiToken == "" {
		return nil, fmt.Errorf("audd api token not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for recognition: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("api_token", c.apiToken); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.WriteField("return", "spotify,apple_music"); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create audd request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", "tagscout/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audd request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("audd returned %d: %s", resp.StatusCode, body)
	}

	var auddResp auddResponse
	if err := json.NewDecoder(resp.Body).Decode(&auddResp); err != nil {
		return nil, fmt.Errorf("failed to decode audd response: %w", err)
	}
	if auddResp.Status != "success" {
		return nil, fmt.Errorf("audd error: %s", auddResp.Error.Message)
	}
	if auddResp.Result == nil || auddResp.Result.Title == "" {
		return nil, nil
	}

	return []recognize.Candidate{c.parseResult(*auddResp.Result)}, nil
}

func (c *AudDClient) parseResult(r auddResult) recognize.Candidate {
	cand := recognize.Candidate{
		Artist:     r.Artist,
		Title:      r.Title,
		Album:      r.Album,
		Confidence: c.confidence,
		Source:     recognize.SourceAudD,
	}
	if len(r.ReleaseDate) >= 4 {
		cand.Year = r.ReleaseDate[:4]
	}

	links := make(map[string]string)
	if r.SongLink != "" {
		links["audd"] = r.SongLink
	}
	if r.Spotify.ExternalURLs.Spotify != "" {
		links["spotify"] = r.Spotify.ExternalURLs.Spotify
	}
	if r.AppleMusic.URL != "" {
		links["apple_music"] = r.AppleMusic.URL
	}
	if len(links) > 0 {
		cand.StreamingLinks = links
	}

	if len(r.Spotify.Album.Images) > 0 {
		cand.CoverURL = r.Spotify.Album.Images[0].URL
	}

	return cand
}

// AudD API response types

type auddResponse struct {
	Status string      `json:"status"`
	Result *auddResult `json:"result"`
	Error  struct {
		Message string `json:"error_message"`
	} `json:"error"`
}

type auddResult struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	SongLink    string `json:"song_link"`
	Spotify     struct {
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
		Album struct {
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"album"`
	} `json:"spotify"`
	AppleMusic struct {
		URL string `json:"url"`
	} `json:"apple_music"`
}
