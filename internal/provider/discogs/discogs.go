package discogs

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

// Client is a Discogs API client. As a marketplace database Discogs
// skews toward physical releases and niche pressings, which makes it a
// useful last resort when the primary databases come up empty. It
// implements recognize.Provider and recognize.ReleaseProvider.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	limiter    *rate.Limiter
}

// New creates a Discogs client honoring the authenticated 60
// requests/minute limit.
func New(token string) *Client {
	return NewWithRate(token, time.Second)
}

// NewWithRate creates a client with a custom request interval.
func NewWithRate(token string, interval time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.discogs.com",
		token:      token,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (c *Client) Name() string { return "discogs" }

// SearchTrack searches the release database by artist and track. The
// hits are releases, so the track title is taken from the query and
// the release title becomes the album.
func (c *Client) SearchTrack(ctx context.Context, q recognize.Query) ([]recognize.Candidate, error) {
	if q.Title == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("type", "release")
	params.Set("track", q.Title)
	if q.Artist != "" {
		params.Set("artist", q.Artist)
	}
	params.Set("per_page", "5")

	var resp searchResponse
	if err := c.getJSON(ctx, "/database/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("discogs search failed: %w", err)
	}

	var out []recognize.Candidate
	for _, hit := range resp.Results {
		artist, album := splitReleaseTitle(hit.Title)
		cand := recognize.Candidate{
			Artist:   artist,
			Title:    q.Title,
			Album:    album,
			Source:   recognize.SourceDiscogs,
			CoverURL: httpsURL(hit.CoverImage),
			Genres:   mergeTags(hit.Genres, hit.Styles),
		}
		if len(cand.Genres) > 0 {
			cand.Genre = cand.Genres[0]
		}
		cand.Year = hit.Year
		out = append(out, cand)
	}
	return out, nil
}

// SearchReleases searches an artist's releases and fetches each
// candidate's track list from the release detail endpoint.
func (c *Client) SearchReleases(ctx context.Context, artist string, limit int) ([]recognize.AlbumCandidate, error) {
	if artist == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("type", "release")
	params.Set("artist", artist)
	params.Set("per_page", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.getJSON(ctx, "/database/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("discogs release search failed: %w", err)
	}

	var out []recognize.AlbumCandidate
	for _, hit := range resp.Results {
		cand, err := c.lookupRelease(ctx, hit.ID)
		if err != nil {
			continue
		}
		out = append(out, cand)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *Client) lookupRelease(ctx context.Context, id int) (recognize.AlbumCandidate, error) {
	var rel releaseDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/releases/%d", id), &rel); err != nil {
		return recognize.AlbumCandidate{}, fmt.Errorf("discogs release lookup failed: %w", err)
	}

	cand := recognize.AlbumCandidate{
		Title:      rel.Title,
		Source:     recognize.SourceDiscogs,
		ExternalID: strconv.Itoa(rel.ID),
	}
	if rel.Year != 0 {
		cand.Year = strconv.Itoa(rel.Year)
	}
	if len(rel.Artists) > 0 {
		cand.Artist = rel.Artists[0].Name
	}

	for i, tr := range rel.Tracklist {
		num := i + 1
		if n, err := strconv.Atoi(tr.Position); err == nil {
			num = n
		}
		cand.Tracks = append(cand.Tracks, recognize.AlbumTrack{
			Number:          num,
			Title:           tr.Title,
			DurationSeconds: parseDuration(tr.Duration),
		})
	}
	cand.TrackCount = len(cand.Tracks)

	return cand, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	if c.token == "" {
		return fmt.Errorf("discogs token not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tagscout/1.0")
	req.Header.Set("Authorization", "Discogs token="+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discogs returned %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// splitReleaseTitle splits Discogs' combined "Artist - Title" release
// naming.
func splitReleaseTitle(title string) (artist, album string) {
	parts := strings.SplitN(title, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(title)
}

// parseDuration converts Discogs' "3:05" track durations to seconds.
func parseDuration(s string) int {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	sec, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0
	}
	return min*60 + sec
}

func httpsURL(u string) string {
	return strings.Replace(u, "http://", "https://", 1)
}

// mergeTags joins genres and styles, styles first since they are more
// specific.
func mergeTags(genres, styles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range append(append([]string{}, styles...), genres...) {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Discogs API response types

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Genres     []string `json:"genre"`
	Styles     []string `json:"style"`
	CoverImage string   `json:"cover_image"`
}

type releaseDetail struct {
	ID        int          `json:"id"`
	Title     string       `json:"title"`
	Year      int          `json:"year"`
	Artists   []artistRef  `json:"artists"`
	Genres    []string     `json:"genres"`
	Styles    []string     `json:"styles"`
	Images    []releaseImg `json:"images"`
	Tracklist []trackEntry `json:"tracklist"`
}

type artistRef struct {
	Name string `json:"name"`
}

type releaseImg struct {
	URI string `json:"uri"`
}

type trackEntry struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}
