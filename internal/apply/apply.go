package apply

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tagscout/internal/logger"
	"tagscout/internal/recognize"

	"go.senan.xyz/taglib"
)

// Applier writes accepted recognition results back into the files'
// ID3 tags, optionally embedding downloaded cover art.
type Applier struct {
	httpClient *http.Client
	logger     *logger.Logger
	dryRun     bool
}

// New creates an Applier. In dry-run mode nothing is written; every
// change is only logged.
func New(log *logger.Logger, dryRun bool) *Applier {
	if log == nil {
		log = logger.New(false)
	}
	return &Applier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log,
		dryRun:     dryRun,
	}
}

// Apply writes one file's recognition result. Unsuccessful results are
// skipped silently; a failed artwork download degrades to tags-only.
func (a *Applier) Apply(ctx context.Context, f recognize.File, res recognize.Result) error {
	if !res.Success {
		return nil
	}

	if a.dryRun {
		a.logger.Info("[dry-run] %s -> %q by %q (%s, %.2f)", f.Filename, res.Title, res.Artist, res.Source, res.Confidence)
		return nil
	}

	if err := writeTags(f.Path, res); err != nil {
		return err
	}

	if res.CoverURL != "" {
		if err := a.embedArtwork(ctx, f.Path, res.CoverURL); err != nil {
			a.logger.Warn("  Failed to embed artwork for %s: %v", f.Filename, err)
		}
	}

	a.logger.Debug("  Tagged %s from %s (%.2f)", f.Filename, res.Source, res.Confidence)
	return nil
}

// ApplyAlbum stamps a resolved album onto a set of files, aligning
// track numbers with the album's track list by title where possible.
func (a *Applier) ApplyAlbum(ctx context.Context, files []recognize.File, album recognize.AlbumCandidate) error {
	var failed int
	for _, f := range files {
		res := recognize.Result{
			Success:     true,
			Artist:      f.Artist,
			Title:       f.Title,
			Album:       album.Title,
			Year:        album.Year,
			TotalTracks: album.TrackCount,
			Confidence:  album.Confidence,
			Source:      album.Source,
		}
		if res.Artist == "" {
			res.Artist = album.Artist
		}
		if n := trackNumberFor(f.Title, album.Tracks); n > 0 {
			res.TrackNumber = n
		}

		if err := a.Apply(ctx, f, res); err != nil {
			a.logger.Warn("  Failed to tag %s: %v", f.Filename, err)
			failed++
		}
	}

	if failed == len(files) && len(files) > 0 {
		return fmt.Errorf("all %d files failed album tagging", len(files))
	}
	return nil
}

func writeTags(path string, res recognize.Result) error {
	tags := make(map[string][]string)

	if res.Title != "" {
		tags[taglib.Title] = []string{res.Title}
	}
	if res.Artist != "" {
		tags[taglib.Artist] = []string{res.Artist}
	}
	if res.Album != "" {
		tags[taglib.Album] = []string{res.Album}
	}
	if res.Genre != "" {
		tags[taglib.Genre] = []string{res.Genre}
	}
	if res.Year != "" {
		tags[taglib.Date] = []string{res.Year}
	}
	if res.TrackNumber > 0 {
		tags[taglib.TrackNumber] = []string{strconv.Itoa(res.TrackNumber)}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func (a *Applier) embedArtwork(ctx context.Context, filePath, artworkURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create artwork request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("artwork download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read artwork data: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := taglib.WriteImage(filePath, data); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", filePath, err)
	}
	return nil
}

// trackNumberFor finds a title's position in an album track list,
// case-insensitively.
func trackNumberFor(title string, tracks []recognize.AlbumTrack) int {
	if title == "" {
		return 0
	}
	for _, t := range tracks {
		if strings.EqualFold(t.Title, title) {
			return t.Number
		}
	}
	return 0
}
