package recognize

import (
	"reflect"
	"testing"
)

func TestMergeProviderResults_StructuredTrusted(t *testing.T) {
	structured := Candidate{
		Artist: "Queen", Title: "Bohemian Rhapsody", Album: "A Night at the Opera",
		Year: "1975", Confidence: 0.9, Source: SourceMusicBrainz,
		ReleaseID: "rel-1", RecordingID: "rec-1", ArtistID: "art-1",
		CoverURL: "https://covers/rel-1",
		Genres:   []string{"Rock", "Hard Rock", "Glam Rock", "Opera"},
	}
	community := Candidate{
		Artist: "Queen", Title: "Bohemian Rhapsody (Remastered)",
		Confidence: 0.7, Source: SourceLastFM,
		Genres: []string{"Classic Rock", "Rock", "70s", "Arena Rock"},
	}

	got := MergeProviderResults(structured, community)

	if got.Title != "Bohemian Rhapsody" || got.Year != "1975" {
		t.Errorf("core fields not taken from structured db: %+v", got)
	}
	if got.ReleaseID != "rel-1" || got.RecordingID != "rec-1" || got.ArtistID != "art-1" {
		t.Errorf("identifiers lost: %+v", got)
	}
	if got.CoverURL != "https://covers/rel-1" {
		t.Errorf("CoverURL = %q", got.CoverURL)
	}
	if got.Source != "musicbrainz + lastfm" {
		t.Errorf("Source = %q", got.Source)
	}
	if !almostEqual(got.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}

	// Community's top 3, then structured's top 3 not already present.
	want := []string{"Classic Rock", "Rock", "70s", "Hard Rock", "Glam Rock"}
	if !reflect.DeepEqual(got.Genres, want) {
		t.Errorf("Genres = %v, want %v", got.Genres, want)
	}
	if got.Genre != "Classic Rock" {
		t.Errorf("Genre = %q, want %q", got.Genre, "Classic Rock")
	}
}

func TestMergeProviderResults_WeakStructured(t *testing.T) {
	structured := Candidate{
		Artist: "Wrong Band", Title: "Wrong Song",
		Confidence: 0.4, Source: SourceMusicBrainz,
		ReleaseID: "rel-2", CoverURL: "https://covers/rel-2",
	}
	community := Candidate{
		Artist: "Queen", Title: "Bohemian Rhapsody",
		Confidence: 0.8, Source: SourceLastFM,
	}

	got := MergeProviderResults(structured, community)

	if got.Artist != "Queen" || got.Title != "Bohemian Rhapsody" {
		t.Errorf("core fields should come from the stronger candidate: %+v", got)
	}
	// Identifiers and artwork still only come from the structured db.
	if got.ReleaseID != "rel-2" || got.CoverURL != "https://covers/rel-2" {
		t.Errorf("identifiers lost: %+v", got)
	}
	if got.Source != SourceLastFM {
		t.Errorf("Source = %q, want %q", got.Source, SourceLastFM)
	}
	if !almostEqual(got.Confidence, 0.8) {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
}

func TestMergeGenres_Cap(t *testing.T) {
	community := []string{"a", "b", "c", "d"}
	structured := []string{"e", "f", "g", "h"}

	got := mergeGenres(community, structured)
	want := []string{"a", "b", "c", "e", "f", "g"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeGenres = %v, want %v", got, want)
	}
}

func TestMergeGenres_DedupCaseInsensitive(t *testing.T) {
	got := mergeGenres([]string{"Rock", "rock", "Pop"}, []string{"ROCK", "Jazz"})
	want := []string{"Rock", "Pop", "Jazz"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeGenres = %v, want %v", got, want)
	}
}
