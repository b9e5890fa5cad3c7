package apply

import (
	"context"
	"testing"

	"tagscout/internal/logger"
	"tagscout/internal/recognize"
)

func TestApply_SkipsUnsuccessful(t *testing.T) {
	a := New(logger.New(false), false)

	// Would fail on the nonexistent path if it tried to write.
	err := a.Apply(context.Background(), recognize.File{Path: "/nope/x.mp3"}, recognize.Result{Success: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApply_DryRunWritesNothing(t *testing.T) {
	a := New(logger.New(false), true)

	err := a.Apply(context.Background(), recognize.File{Path: "/nope/x.mp3", Filename: "x.mp3"}, recognize.Result{
		Success: true, Artist: "Queen", Title: "Bohemian Rhapsody", Source: recognize.SourceMusicBrainz, Confidence: 1.0,
	})
	if err != nil {
		t.Fatalf("dry run must not touch files: %v", err)
	}
}

func TestApplyAlbum_DryRun(t *testing.T) {
	a := New(logger.New(false), true)

	album := recognize.AlbumCandidate{
		Title: "Nevermind", Artist: "Nirvana", Year: "1991",
		TrackCount: 2,
		Tracks: []recognize.AlbumTrack{
			{Number: 1, Title: "Smells Like Teen Spirit"},
			{Number: 2, Title: "In Bloom"},
		},
		Confidence: 1.0,
		Source:     recognize.SourceMusicBrainz,
	}
	files := []recognize.File{
		{Path: "/nope/1.mp3", Filename: "1.mp3", Title: "In Bloom"},
		{Path: "/nope/2.mp3", Filename: "2.mp3", Title: "Smells Like Teen Spirit"},
	}

	if err := a.ApplyAlbum(context.Background(), files, album); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrackNumberFor(t *testing.T) {
	tracks := []recognize.AlbumTrack{
		{Number: 1, Title: "Smells Like Teen Spirit"},
		{Number: 6, Title: "Polly"},
	}

	if got := trackNumberFor("polly", tracks); got != 6 {
		t.Errorf("trackNumberFor = %d, want 6", got)
	}
	if got := trackNumberFor("Lithium", tracks); got != 0 {
		t.Errorf("trackNumberFor = %d, want 0 for unknown title", got)
	}
	if got := trackNumberFor("", tracks); got != 0 {
		t.Errorf("trackNumberFor = %d, want 0 for empty title", got)
	}
}
