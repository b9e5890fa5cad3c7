package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tagscout/internal/recognize"
)

// acoustidMinScore is the match score below which AcoustID results are
// discarded; the database contains many low-quality community
// submissions.
const acoustidMinScore = 0.8

// AcoustIDClient resolves Chromaprint fingerprints against the
// AcoustID database.
type AcoustIDClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	calc       *Calculator
}

// NewAcoustID creates an AcoustID client using the given fingerprint
// calculator.
func NewAcoustID(apiKey string, calc *Calculator) *AcoustIDClient {
	return &AcoustIDClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     "https://api.acoustid.org/v2/lookup",
		apiKey:     apiKey,
		calc:       calc,
	}
}

// Recognize fingerprints the file and looks the print up on AcoustID.
func (c *AcoustIDClient) Recognize(ctx context.Context, path string) ([]recognize.Candidate, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("acoustid api key not configured")
	}

	fp, err := c.calc.Calculate(ctx, path)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("client", c.apiKey)
	params.Set("duration", strconv.Itoa(int(fp.Duration)))
	params.Set("fingerprint", fp.Fingerprint)
	params.Set("meta", "recordings+releases")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create acoustid request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "tagscout/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acoustid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("acoustid returned %d: %s", resp.StatusCode, body)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return nil, fmt.Errorf("failed to decode acoustid response: %w", err)
	}
	if lookupResp.Status != "ok" {
		return nil, fmt.Errorf("acoustid error: %s", lookupResp.Error.Message)
	}

	return parseLookup(lookupResp), nil
}

func parseLookup(resp lookupResponse) []recognize.Candidate {
	var out []recognize.Candidate
	for _, res := range resp.Results {
		if res.Score < acoustidMinScore {
			continue
		}
		for _, rec := range res.Recordings {
			cand := recognize.Candidate{
				Title:       rec.Title,
				Confidence:  res.Score,
				Source:      recognize.SourceAcoustID,
				RecordingID: rec.ID,
			}
			if len(rec.Artists) > 0 {
				cand.Artist = rec.Artists[0].Name
				cand.ArtistID = rec.Artists[0].ID
			}
			if len(rec.Releases) > 0 {
				cand.Album = rec.Releases[0].Title
				cand.ReleaseID = rec.Releases[0].ID
			}
			if cand.HasIdentity() {
				out = append(out, cand)
			}
		}
	}
	return out
}

// AcoustID API response types

type lookupResponse struct {
	Status  string         `json:"status"`
	Results []lookupResult `json:"results"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

type lookupResult struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Recordings []lookupRecording `json:"recordings"`
}

type lookupRecording struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artists  []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Releases []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"releases"`
}
