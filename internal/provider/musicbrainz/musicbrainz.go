package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"tagscout/internal/recognize"

	"golang.org/x/time/rate"
)

// Client is a MusicBrainz Web API client. It implements both
// recognize.Provider (track search) and recognize.ReleaseProvider
// (release search with track lists).
type Client struct {
	httpClient *http.Client
	apiURL     string
	coverURL   string
	limiter    *rate.Limiter
}

// New creates a MusicBrainz client honoring the API's 1 request/second
// limit.
func New() *Client {
	return NewWithRate(time.Second)
}

// NewWithRate creates a client with a custom request interval. Tests
// pass a tiny interval.
func NewWithRate(interval time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://musicbrainz.org/ws/2",
		coverURL:   "https://coverartarchive.org",
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (c *Client) Name() string { return "musicbrainz" }

// SearchTrack queries the recording search API. When an album was part
// of the query and produced nothing, the search is retried without it:
// local album tags are frequently wrong and over-constrain the Lucene
// query.
func (c *Client) SearchTrack(ctx context.Context, q recognize.Query) ([]recognize.Candidate, error) {
	query := buildQuery(q)
	if query == "" {
		return nil, nil
	}

	recordings, err := c.searchRecordings(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(recordings) == 0 && q.Album != "" {
		recordings, err = c.searchRecordings(ctx, buildQuery(recognize.Query{Artist: q.Artist, Title: q.Title}))
		if err != nil {
			return nil, err
		}
	}

	return c.parseRecordings(recordings), nil
}

// SearchReleases queries the release search API for an artist's
// releases and fetches each candidate's track list.
func (c *Client) SearchReleases(ctx context.Context, artist string, limit int) ([]recognize.AlbumCandidate, error) {
	if artist == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 25
	}

	query := fmt.Sprintf("artist:%q AND status:official", artist)
	reqURL := fmt.Sprintf("%s/release?query=%s&fmt=json&limit=%d", c.apiURL, url.QueryEscape(query), limit)

	var resp releaseSearchResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("musicbrainz release search failed: %w", err)
	}

	var out []recognize.AlbumCandidate
	for _, rel := range resp.Releases {
		cand, err := c.LookupRelease(ctx, rel.ID)
		if err != nil {
			// One missing release must not sink the whole search.
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

// SearchReleasesByTrack finds releases containing a specific recording,
// used to widen an album search beyond the majority artist's own
// discography.
func (c *Client) SearchReleasesByTrack(ctx context.Context, artist, title string, limit int) ([]recognize.AlbumCandidate, error) {
	if title == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	query := buildQuery(recognize.Query{Artist: artist, Title: title})
	recordings, err := c.searchRecordings(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []recognize.AlbumCandidate
	for _, rec := range recordings {
		for _, rel := range rec.Releases {
			if seen[rel.ID] {
				continue
			}
			seen[rel.ID] = true

			cand, err := c.LookupRelease(ctx, rel.ID)
			if err != nil {
				continue
			}
			out = append(out, cand)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// LookupRelease fetches a single release with its track list.
func (c *Client) LookupRelease(ctx context.Context, id string) (recognize.AlbumCandidate, error) {
	reqURL := fmt.Sprintf("%s/release/%s?inc=recordings+artist-credits&fmt=json", c.apiURL, id)

	var rel release
	if err := c.getJSON(ctx, reqURL, &rel); err != nil {
		return recognize.AlbumCandidate{}, fmt.Errorf("musicbrainz release lookup failed: %w", err)
	}

	cand := recognize.AlbumCandidate{
		Title:      rel.Title,
		Artist:     joinArtistCredits(rel.ArtistCredit),
		Year:       yearOf(rel.Date),
		Source:     recognize.SourceMusicBrainz,
		ExternalID: rel.ID,
	}

	num := 0
	for _, m := range rel.Media {
		for _, tr := range m.Tracks {
			num++
			n := num
			if parsed, err := strconv.Atoi(tr.Number); err == nil {
				n = parsed
			}
			cand.Tracks = append(cand.Tracks, recognize.AlbumTrack{
				Number:          n,
				Title:           tr.Title,
				Artist:          joinArtistCredits(tr.ArtistCredit),
				DurationSeconds: tr.Length / 1000,
			})
		}
	}
	cand.TrackCount = len(cand.Tracks)

	return cand, nil
}

func (c *Client) searchRecordings(ctx context.Context, query string) ([]recording, error) {
	reqURL := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=5", c.apiURL, url.QueryEscape(query))

	var resp recordingSearchResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("musicbrainz recording search failed: %w", err)
	}
	return resp.Recordings, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body,
// retrying once on 429/503 honoring Retry-After.
func (c *Client) getJSON(ctx context.Context, reqURL string, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tagscout/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("musicbrainz returned %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// doWithRetry executes the request, retrying once on 429/503 with the
// server-suggested backoff.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		resp.Body.Close()
		retryAfter := 2
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if parsed, err := strconv.Atoi(ra); err == nil {
				retryAfter = parsed
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}

		retry := req.Clone(ctx)
		return c.httpClient.Do(retry)
	}

	return resp, nil
}

func buildQuery(q recognize.Query) string {
	var parts []string
	if q.Title != "" {
		parts = append(parts, fmt.Sprintf("recording:%q", q.Title))
	}
	if q.Artist != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", q.Artist))
	}
	if q.Album != "" {
		parts = append(parts, fmt.Sprintf("release:%q", q.Album))
	}
	return strings.Join(parts, " AND ")
}

func (c *Client) parseRecordings(recordings []recording) []recognize.Candidate {
	var results []recognize.Candidate
	for _, rec := range recordings {
		cand := recognize.Candidate{
			Title:       rec.Title,
			Artist:      joinArtistCredits(rec.ArtistCredit),
			Source:      recognize.SourceMusicBrainz,
			RecordingID: rec.ID,
			Genres:      topTags(rec.Tags, 3),
		}
		if len(cand.Genres) > 0 {
			cand.Genre = cand.Genres[0]
		}
		if len(rec.ArtistCredit) > 0 {
			cand.ArtistID = rec.ArtistCredit[0].Artist.ID
		}

		if len(rec.Releases) > 0 {
			rel := pickBestRelease(rec.Releases)
			cand.Album = rel.Title
			cand.Year = yearOf(rel.Date)
			cand.ReleaseID = rel.ID
			cand.CoverURL = fmt.Sprintf("%s/release/%s/front-500", c.coverURL, rel.ID)

			if len(rel.Media) > 0 {
				cand.TotalTracks = rel.Media[0].TrackCount
				if len(rel.Media[0].Tracks) > 0 {
					if n, err := strconv.Atoi(rel.Media[0].Tracks[0].Number); err == nil {
						cand.TrackNumber = n
					}
				}
			}
		}

		results = append(results, cand)
	}
	return results
}

func joinArtistCredits(credits []artistCredit) string {
	var parts []string
	for _, ac := range credits {
		parts = append(parts, ac.Artist.Name)
	}
	return strings.Join(parts, ", ")
}

// pickBestRelease selects the most appropriate release for tagging.
// Prefers: Official status, Album type, no secondary types (not
// Compilation), earliest date.
func pickBestRelease(releases []release) release {
	best := releases[0]
	bestScore := releaseScore(best)

	for _, rel := range releases[1:] {
		s := releaseScore(rel)
		if s > bestScore || (s == bestScore && rel.Date != "" && (best.Date == "" || rel.Date < best.Date)) {
			best = rel
			bestScore = s
		}
	}
	return best
}

func releaseScore(rel release) int {
	score := 0

	if rel.Status == "Official" {
		score += 4
	}

	if rel.ReleaseGroup.PrimaryType == "Album" {
		score += 2
	}

	if len(rel.ReleaseGroup.SecondaryTypes) == 0 {
		score += 1
	}

	return score
}

func topTags(tags []tag, n int) []string {
	if len(tags) == 0 {
		return nil
	}
	sorted := make([]tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })

	var out []string
	for _, t := range sorted {
		if t.Name == "" {
			continue
		}
		out = append(out, t.Name)
		if len(out) >= n {
			break
		}
	}
	return out
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// MusicBrainz API response types

type recordingSearchResponse struct {
	Recordings []recording `json:"recordings"`
}

type releaseSearchResponse struct {
	Releases []release `json:"releases"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
	Tags         []tag          `json:"tags"`
}

type artistCredit struct {
	Artist artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       string         `json:"status"`
	Date         string         `json:"date"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	ReleaseGroup releaseGroup   `json:"release-group"`
	Media        []media        `json:"media"`
}

type releaseGroup struct {
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}

type media struct {
	TrackCount int     `json:"track-count"`
	Tracks     []track `json:"tracks"`
}

type track struct {
	Number       string         `json:"number"`
	Title        string         `json:"title"`
	Length       int            `json:"length"`
	ArtistCredit []artistCredit `json:"artist-credit"`
}

type tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}
