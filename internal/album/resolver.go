package album

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tagscout/internal/logger"
	"tagscout/internal/recognize"
)

// Search tuning. The primary database gets a wider net and a lower
// admission floor than the marketplace fallback, whose catalog data is
// noisier.
const (
	primaryLimit       = 25
	secondaryLimit     = 10
	primaryAdmission   = 0.2
	secondaryAdmission = 0.3

	// consensusGoal is what the search wants to reach before it stops
	// escalating: at least two candidates and a best score above it.
	consensusGoal = 0.6

	// wideningTitles is how many file titles are used for per-track
	// release searches when artist-level search falls short.
	wideningTitles = 3
	wideningLimit  = 3

	maxCandidates = 5
)

// trackReleaseSearcher is implemented by providers that can find the
// releases containing a specific recording.
type trackReleaseSearcher interface {
	SearchReleasesByTrack(ctx context.Context, artist, title string, limit int) ([]recognize.AlbumCandidate, error)
}

// Resolver determines which album a directory of tracks belongs to by
// scoring provider release candidates against the local track titles.
type Resolver struct {
	primary   recognize.ReleaseProvider
	secondary recognize.ReleaseProvider
	logger    *logger.Logger

	mu    sync.Mutex
	cache map[string][]recognize.AlbumCandidate
}

// NewResolver wires an album resolver. secondary may be nil.
func NewResolver(primary, secondary recognize.ReleaseProvider, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.New(false)
	}
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		logger:    log,
		cache:     make(map[string][]recognize.AlbumCandidate),
	}
}

// Resolve returns up to five album candidates for a set of files,
// strongest first. Escalation order: the primary database's releases
// for the majority artist, then the marketplace database, then
// per-track release searches. The result set is cached per file set.
func (r *Resolver) Resolve(ctx context.Context, files []recognize.File) ([]recognize.AlbumCandidate, error) {
	if len(files) == 0 {
		return nil, nil
	}

	key := recognize.AlbumKey(files)
	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	titles := fileTitles(files)
	artist := majorityArtist(files)
	r.logger.Debug("Album search: artist=%q, %d titles", artist, len(titles))

	var candidates []recognize.AlbumCandidate

	if artist != "" && r.primary != nil {
		releases, err := r.primary.SearchReleases(ctx, artist, primaryLimit)
		if err != nil {
			r.logger.Warn("Primary album search failed: %v", err)
		}
		candidates = admit(candidates, releases, titles, primaryAdmission)
	}

	if !satisfied(candidates) && artist != "" && r.secondary != nil {
		releases, err := r.secondary.SearchReleases(ctx, artist, secondaryLimit)
		if err != nil {
			r.logger.Warn("Secondary album search failed: %v", err)
		}
		candidates = admit(candidates, releases, titles, secondaryAdmission)
	}

	if !satisfied(candidates) {
		candidates = r.widen(ctx, candidates, artist, titles)
	}

	candidates = dedupe(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	r.mu.Lock()
	r.cache[key] = candidates
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return candidates, err
	}
	return candidates, nil
}

// widen searches releases by individual track titles, catching
// compilations and albums credited to a different artist.
func (r *Resolver) widen(ctx context.Context, candidates []recognize.AlbumCandidate, artist string, titles []string) []recognize.AlbumCandidate {
	searcher, ok := r.primary.(trackReleaseSearcher)
	if !ok {
		return candidates
	}

	n := len(titles)
	if n > wideningTitles {
		n = wideningTitles
	}
	for _, title := range titles[:n] {
		releases, err := searcher.SearchReleasesByTrack(ctx, artist, title, wideningLimit)
		if err != nil {
			r.logger.Debug("  Track widening failed for %q: %v", title, err)
			continue
		}
		candidates = admit(candidates, releases, titles, primaryAdmission)
	}
	return candidates
}

// admit scores releases against the file titles and keeps those above
// the admission floor.
func admit(candidates []recognize.AlbumCandidate, releases []recognize.AlbumCandidate, titles []string, floor float64) []recognize.AlbumCandidate {
	for _, rel := range releases {
		rel.Confidence = recognize.ScoreAlbumMatch(titles, trackTitles(rel.Tracks))
		if rel.Confidence > floor {
			candidates = append(candidates, rel)
		}
	}
	return candidates
}

func satisfied(candidates []recognize.AlbumCandidate) bool {
	if len(candidates) < 2 {
		return false
	}
	best := 0.0
	for _, c := range candidates {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best > consensusGoal
}

// dedupe collapses candidates that refer to the same release, keeping
// the higher score. Identity is the provider ID when present, else the
// normalized title/artist pair.
func dedupe(candidates []recognize.AlbumCandidate) []recognize.AlbumCandidate {
	byKey := make(map[string]int)
	var out []recognize.AlbumCandidate

	for _, c := range candidates {
		key := c.Source + "|" + c.ExternalID
		if c.ExternalID == "" {
			key = strings.ToLower(c.Title) + "|" + strings.ToLower(c.Artist)
		}
		if i, ok := byKey[key]; ok {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, c)
	}
	return out
}

// majorityArtist returns the most common non-empty artist among the
// files, preserving the spelling of its first occurrence.
func majorityArtist(files []recognize.File) string {
	counts := make(map[string]int)
	first := make(map[string]string)

	for _, f := range files {
		a := strings.TrimSpace(f.Artist)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		counts[key]++
		if _, ok := first[key]; !ok {
			first[key] = a
		}
	}

	best, bestCount := "", 0
	for key, n := range counts {
		if n > bestCount {
			best, bestCount = key, n
		}
	}
	return first[best]
}

func fileTitles(files []recognize.File) []string {
	var out []string
	for _, f := range files {
		if strings.TrimSpace(f.Title) != "" {
			out = append(out, f.Title)
		}
	}
	return out
}

func trackTitles(tracks []recognize.AlbumTrack) []string {
	var out []string
	for _, t := range tracks {
		out = append(out, t.Title)
	}
	return out
}
