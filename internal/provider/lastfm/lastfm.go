package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tagscout/internal/recognize"

	"golang.org/x/time/rate"
)

// Client is a Last.fm Web API client implementing recognize.Provider.
// Last.fm's value is community data: listener-voted tags and album
// artwork, not authoritative release metadata.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	limiter    *rate.Limiter
}

// New creates a Last.fm client. The API tolerates ~5 requests/second.
func New(apiKey string) *Client {
	return NewWithRate(apiKey, 200*time.Millisecond)
}

// NewWithRate creates a client with a custom request interval.
func NewWithRate(apiKey string, interval time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://ws.audioscrobbler.com/2.0/",
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (c *Client) Name() string { return "lastfm" }

// SearchTrack looks up a track via track.getInfo with autocorrection.
// Both artist and title are required; Last.fm cannot search by title
// alone in a useful way.
func (c *Client) SearchTrack(ctx context.Context, q recognize.Query) ([]recognize.Candidate, error) {
	if q.Artist == "" || q.Title == "" {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("lastfm api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", q.Artist)
	params.Set("track", q.Title)
	params.Set("autocorrect", "1")
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lastfm request: %w", err)
	}
	req.Header.Set("User-Agent", "tagscout/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lastfm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("lastfm returned %d: %s", resp.StatusCode, body)
	}

	var infoResp trackInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&infoResp); err != nil {
		return nil, fmt.Errorf("failed to decode lastfm response: %w", err)
	}

	// Error code 6 is "track not found"; not an error for us.
	if infoResp.Error != 0 {
		if infoResp.Error == 6 {
			return nil, nil
		}
		return nil, fmt.Errorf("lastfm error %d: %s", infoResp.Error, infoResp.Message)
	}
	if infoResp.Track.Name == "" {
		return nil, nil
	}

	return []recognize.Candidate{parseTrack(infoResp.Track)}, nil
}

func parseTrack(t trackInfo) recognize.Candidate {
	cand := recognize.Candidate{
		Title:  t.Name,
		Artist: t.Artist.Name,
		Album:  t.Album.Title,
		Source: recognize.SourceLastFM,
	}

	for _, tag := range t.TopTags.Tags {
		if tag.Name != "" {
			cand.Genres = append(cand.Genres, tag.Name)
		}
	}
	if len(cand.Genres) > 0 {
		cand.Genre = cand.Genres[0]
	}

	if n, err := strconv.Atoi(t.Album.Attr.Position); err == nil {
		cand.TrackNumber = n
	}

	cand.CoverURL = pickImage(t.Album.Images)

	if t.URL != "" {
		cand.StreamingLinks = map[string]string{"lastfm": t.URL}
	}

	return cand
}

// pickImage returns the largest album image, preferring https.
func pickImage(images []image) string {
	best := ""
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		best = img.URL
		if img.Size == "extralarge" {
			break
		}
	}
	return strings.Replace(best, "http://", "https://", 1)
}

// Last.fm API response types

type trackInfoResponse struct {
	Track   trackInfo `json:"track"`
	Error   int       `json:"error"`
	Message string    `json:"message"`
}

type trackInfo struct {
	Name    string     `json:"name"`
	URL     string     `json:"url"`
	Artist  artistInfo `json:"artist"`
	Album   albumInfo  `json:"album"`
	TopTags topTags    `json:"toptags"`
}

type artistInfo struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
}

type albumInfo struct {
	Title  string  `json:"title"`
	Images []image `json:"image"`
	Attr   struct {
		Position string `json:"position"`
	} `json:"@attr"`
}

type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type topTags struct {
	Tags []tagInfo `json:"tag"`
}

type tagInfo struct {
	Name string `json:"name"`
}
