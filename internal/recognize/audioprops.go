package recognize

// Duration bounds (seconds) for "this is plausibly a song".
const (
	minSongDuration = 60
	maxSongDuration = 600
)

// AnalyzeAudioProperties salvages what the scanner could read from the
// file itself: partial tag text scores 0.5, a plausible song-length
// duration alone scores 0.2. No network, no fingerprinting.
func AnalyzeAudioProperties(f File) Candidate {
	c := Candidate{Source: SourceAudioProperties}

	if f.Artist != "" || f.Title != "" {
		c.Artist = f.Artist
		c.Title = f.Title
		c.Album = f.Album
		c.Confidence = 0.5
		return c
	}

	if f.DurationSeconds > minSongDuration && f.DurationSeconds < maxSongDuration {
		c.Confidence = 0.2
	}
	return c
}
