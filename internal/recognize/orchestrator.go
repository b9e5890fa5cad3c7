package recognize

import (
	"context"
	"fmt"

	"tagscout/internal/logger"
)

// Confidence thresholds driving the recognition pipeline.
const (
	// acceptThreshold is the floor below which a result is reported as
	// unidentified.
	acceptThreshold = 0.3
	// sufficientThreshold short-circuits the heuristic chain: above it
	// the expensive fingerprinting stage is skipped.
	sufficientThreshold = 0.6
	// upgradeThreshold is what an online re-search seeded from a
	// heuristic guess must reach to replace the guess.
	upgradeThreshold = 0.5
	// coverBackfillThreshold: when a direct search scores this low and
	// brought no artwork, fingerprinting is consulted for a cover only.
	coverBackfillThreshold = 0.3
)

// Orchestrator runs the recognition pipeline for a file: direct online
// search when the file carries usable tags, otherwise a fallback chain
// of path heuristics, audio-property salvage and fingerprinting.
//
// Providers are tried in order; by convention the first is the
// structured database (MusicBrainz), the second the community tag
// database (Last.fm), the third the marketplace database (Discogs).
// Any of them may be nil.
type Orchestrator struct {
	structured    Provider
	community     Provider
	marketplace   Provider
	fingerprinter Fingerprinter
	cache         *Cache
	logger        *logger.Logger
}

// NewOrchestrator wires a recognition pipeline. Nil providers and a nil
// fingerprinter disable the corresponding stage; a nil cache disables
// caching.
func NewOrchestrator(structured, community, marketplace Provider, fp Fingerprinter, cache *Cache, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.New(false)
	}
	return &Orchestrator{
		structured:    structured,
		community:     community,
		marketplace:   marketplace,
		fingerprinter: fp,
		cache:         cache,
		logger:        log,
	}
}

// Resolve identifies a single file. It never returns an error for "we
// could not identify this"; that is a Result with Success=false. Errors
// are reserved for cancellation.
func (o *Orchestrator) Resolve(ctx context.Context, f File) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	key := FileKey(f)
	if o.cache != nil {
		if cached, ok := o.cache.Get(key); ok {
			o.logger.Debug("  Cache hit: %s", f.Filename)
			return cached, nil
		}
	}

	var res Result
	if f.HasBasicTags() {
		res = o.resolveTagged(ctx, f)
	} else {
		res = o.resolveFallback(ctx, f)
	}

	if o.cache != nil {
		o.cache.Put(key, res)
	}
	return res, nil
}

// resolveTagged handles files whose artist and title tags are present:
// a direct provider search seeded from the tags.
func (o *Orchestrator) resolveTagged(ctx context.Context, f File) Result {
	q := Query{Artist: f.Artist, Title: f.Title, Album: f.Album}
	best := o.directSearch(ctx, q)

	// Weak match with no artwork: fingerprinting may still know the
	// cover, even if we keep the tags we have.
	if best.Confidence < coverBackfillThreshold && best.CoverURL == "" && o.fingerprinter != nil {
		if cover := o.fingerprintCover(ctx, f.Path); cover != "" {
			best.CoverURL = cover
		}
	}

	return o.finish(f, best)
}

// resolveFallback runs the heuristic chain for untagged files: path
// analysis, then the wider filename patterns when the path gave
// nothing, then audio-property salvage, then fingerprinting unless a
// heuristic already scored high enough. The best candidate may finally
// be upgraded through an online re-search.
func (o *Orchestrator) resolveFallback(ctx context.Context, f File) Result {
	var candidates []Candidate

	path := AnalyzePath(f.Path)
	if path.Confidence > 0 {
		candidates = append(candidates, path)
	} else if enhanced := AnalyzeFilenameEnhanced(f.Path); enhanced.Confidence > 0 {
		candidates = append(candidates, enhanced)
	}

	if bestOf(candidates).Confidence == 0 {
		if props := AnalyzeAudioProperties(f); props.Confidence > 0 {
			candidates = append(candidates, props)
		}
	}

	if bestOf(candidates).Confidence < sufficientThreshold && o.fingerprinter != nil {
		fps, err := o.fingerprinter.Recognize(ctx, f.Path)
		if err != nil {
			o.logger.Debug("  Fingerprinting failed for %s: %v", f.Filename, err)
		} else {
			candidates = append(candidates, fps...)
		}
	}

	best := bestOf(candidates)
	if best.Confidence == 0 {
		return Result{Success: false}
	}

	// A strong heuristic guess is worth a provider round-trip: the
	// online databases can correct spelling and fill in album, year,
	// genre and artwork.
	if best.Confidence > sufficientThreshold && best.HasIdentity() {
		upgraded := o.directSearch(ctx, Query{Artist: best.Artist, Title: best.Title, Album: best.Album})
		if upgraded.Confidence > upgradeThreshold {
			upgraded.FallbackMethod = best.Source
			best = upgraded
		}
	}

	return o.finish(f, best)
}

// directSearch queries the structured and community databases, scores
// their candidates against the query, and merges the two winners. The
// marketplace database is consulted only when neither produced a
// usable match. Provider failures are logged and treated as empty
// result sets.
func (o *Orchestrator) directSearch(ctx context.Context, q Query) Candidate {
	structured := o.searchOne(ctx, o.structured, q)
	community := o.searchOne(ctx, o.community, q)

	var best Candidate
	switch {
	case structured.Confidence > 0 && community.Confidence > 0:
		best = MergeProviderResults(structured, community)
	case structured.Confidence > 0:
		best = structured
	case community.Confidence > 0:
		best = community
	}

	if best.Confidence <= upgradeThreshold && o.marketplace != nil {
		if mp := o.searchOne(ctx, o.marketplace, q); mp.Confidence > best.Confidence {
			best = mp
		}
	}

	return best
}

// searchOne queries a single provider and returns its best-scoring
// candidate, or a zero candidate on error or no results. Scoring is
// done here so providers stay plain data sources.
func (o *Orchestrator) searchOne(ctx context.Context, p Provider, q Query) Candidate {
	if p == nil {
		return Candidate{}
	}

	results, err := p.SearchTrack(ctx, q)
	if err != nil {
		o.logger.Warn("Provider %s failed: %v", p.Name(), err)
		return Candidate{}
	}

	var best Candidate
	for _, c := range results {
		c.Confidence = ScoreMatch(q.Artist, q.Title, q.Album, c.Artist, c.Title, c.Album)
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	if best.Confidence > 0 {
		o.logger.Debug("  %s: %q by %q (confidence %.2f)", p.Name(), best.Title, best.Artist, best.Confidence)
	}
	return best
}

// fingerprintCover asks the fingerprinting stage for artwork only.
func (o *Orchestrator) fingerprintCover(ctx context.Context, path string) string {
	results, err := o.fingerprinter.Recognize(ctx, path)
	if err != nil {
		return ""
	}
	for _, c := range results {
		if c.CoverURL != "" {
			return c.CoverURL
		}
	}
	return ""
}

// finish converts the winning candidate into a Result, applying the
// acceptance threshold.
func (o *Orchestrator) finish(f File, best Candidate) Result {
	if best.Confidence <= acceptThreshold || !best.HasIdentity() {
		o.logger.Debug("  No acceptable match for %s (best %.2f)", f.Filename, best.Confidence)
		return Result{Success: false, Confidence: best.Confidence, CoverURL: best.CoverURL}
	}

	return Result{
		Success:        true,
		Artist:         best.Artist,
		Title:          best.Title,
		Album:          best.Album,
		Genre:          best.Genre,
		Year:           best.Year,
		TrackNumber:    best.TrackNumber,
		TotalTracks:    best.TotalTracks,
		CoverURL:       best.CoverURL,
		StreamingLinks: best.StreamingLinks,
		Confidence:     best.Confidence,
		Source:         best.Source,
		FallbackMethod: best.FallbackMethod,
	}
}

func bestOf(candidates []Candidate) Candidate {
	var best Candidate
	for _, c := range candidates {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// Describe renders a result for log output.
func Describe(r Result) string {
	if !r.Success {
		return "unidentified"
	}
	s := fmt.Sprintf("%q by %q", r.Title, r.Artist)
	if r.Album != "" {
		s += fmt.Sprintf(" (%s)", r.Album)
	}
	if r.FallbackMethod != "" {
		s += fmt.Sprintf(" [%s via %s]", r.Source, r.FallbackMethod)
	}
	return s
}
