package recognize

import "context"

// Candidate source labels. Heuristic stages use snake_case method names,
// provider candidates carry the provider's name.
const (
	SourcePathAnalysis     = "path_analysis"
	SourceFilenameAnalysis = "filename_analysis"
	SourceAudioProperties  = "audio_properties"
	SourceMusicBrainz      = "musicbrainz"
	SourceLastFM           = "lastfm"
	SourceDiscogs          = "discogs"
	SourceAcoustID         = "acoustid"
	SourceAudD             = "audd"
	SourceLocalFingerprint = "local_fingerprint"
)

// Candidate is a provisional identification for a single track. Stages
// produce fresh Candidates and never mutate ones they received; the
// orchestrator selects and merges.
type Candidate struct {
	Artist string
	Title  string
	Album  string
	Genre  string
	Genres []string
	Year   string

	TrackNumber int
	TotalTracks int

	Confidence float64 // 0.0-1.0
	Source     string

	// Provider-specific identifiers. Only the structured database
	// (MusicBrainz) populates ReleaseID/RecordingID/ArtistID.
	ReleaseID   string
	RecordingID string
	ArtistID    string

	CoverURL       string
	StreamingLinks map[string]string

	// FallbackMethod records which heuristic stage seeded a provider
	// upgrade, e.g. "path_analysis".
	FallbackMethod string
}

// HasIdentity reports whether the candidate carries a usable
// artist+title pair.
func (c Candidate) HasIdentity() bool {
	return c.Artist != "" && c.Title != ""
}

// AlbumTrack is one entry of an AlbumCandidate track list.
type AlbumTrack struct {
	Number          int
	Title           string
	Artist          string
	DurationSeconds int
}

// AlbumCandidate is a provisional identification for a whole release,
// scored against a set of local files.
type AlbumCandidate struct {
	Title      string
	Artist     string
	Year       string
	TrackCount int
	Tracks     []AlbumTrack
	Confidence float64
	Source     string
	ExternalID string
}

// File describes one audio file as seen by the pipeline. It is built by
// a collaborator (the scanner) and read-only inside the core.
type File struct {
	Path      string
	Filename  string
	Directory string

	Artist string
	Title  string
	Album  string

	// Salvaged audio properties, zero when the scanner could not read
	// the file. Used by the audio-properties fallback stage.
	DurationSeconds int
	Bitrate         int
	SampleRate      int

	// Cache key inputs.
	Size    int64
	ModTime int64
}

// HasBasicTags reports whether the file already carries the identity
// fields the direct search path requires.
func (f File) HasBasicTags() bool {
	return f.Artist != "" && f.Title != ""
}

// Result is what the pipeline reports back to the caller for one file.
// Success false means no candidate cleared the acceptance threshold;
// in that case no suggestion fields are populated.
type Result struct {
	Success bool

	Artist string
	Title  string
	Album  string
	Genre  string
	Year   string

	TrackNumber int
	TotalTracks int

	CoverURL       string
	StreamingLinks map[string]string

	Confidence     float64
	Source         string
	FallbackMethod string
}

// Query is the cleaned-up input for provider track searches.
type Query struct {
	Artist string
	Title  string
	Album  string
}

// Provider is a named external metadata source searchable by
// artist+title(+album).
type Provider interface {
	Name() string
	SearchTrack(ctx context.Context, query Query) ([]Candidate, error)
}

// ReleaseProvider searches a provider's release catalog by artist.
type ReleaseProvider interface {
	Name() string
	SearchReleases(ctx context.Context, artist string, limit int) ([]AlbumCandidate, error)
}

// Fingerprinter identifies a file from its audio content. Implemented
// by the fingerprint service; the orchestrator only sees this interface.
type Fingerprinter interface {
	Recognize(ctx context.Context, path string) ([]Candidate, error)
}
