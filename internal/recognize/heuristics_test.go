package recognize

import "testing"

func TestAnalyzePath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		artist     string
		title      string
		album      string
		confidence float64
	}{
		{
			name:       "artist dash album directory",
			path:       "library/Pink Floyd - The Wall/05 Hey You.mp3",
			artist:     "Pink Floyd",
			album:      "The Wall",
			confidence: 0.8,
		},
		{
			name:       "track artist title filename in library tree",
			path:       "music/Nirvana/Nevermind/03 Nirvana - Smells Like Teen Spirit.mp3",
			artist:     "Nirvana",
			title:      "Smells Like Teen Spirit",
			album:      "Nevermind",
			confidence: 0.8,
		},
		{
			name:       "artist over album-looking directory",
			path:       "The Beatles/Abbey Road (1969)/07 Here Comes The Sun.mp3",
			artist:     "The Beatles",
			album:      "Abbey Road",
			confidence: 0.7,
		},
		{
			name:       "generic library wrapper",
			path:       "Music/The Beatles/Abbey Road/07 Here Comes The Sun.mp3",
			artist:     "The Beatles",
			album:      "Abbey Road",
			confidence: 0.6,
		},
		{
			name:       "bare parent becomes album",
			path:       "Nevermind/track07.mp3",
			album:      "Nevermind",
			confidence: 0.4,
		},
		{
			name:       "windows separators",
			path:       `C:\Music\AC-DC - Back In Black\04 Shoot To Thrill.mp3`,
			artist:     "AC-DC",
			album:      "Back In Black",
			confidence: 0.8,
		},
		{
			name:       "hyphenated band name in filename",
			path:       "downloads/AC-DC - Thunderstruck.mp3",
			artist:     "AC-DC",
			title:      "Thunderstruck",
			confidence: 0.8,
		},
		{
			name:       "underscore separator",
			path:       "downloads/Daft_Punk_One_More_Time.mp3",
			artist:     "Daft",
			title:      "Punk One More Time",
			confidence: 0.6,
		},
		{
			name: "placeholder pair is rejected",
			path: "music/test - mp3.mp3",
		},
		{
			name: "no signal at all",
			path: "downloads/asdfgh.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzePath(tt.path)
			if got.Artist != tt.artist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.artist)
			}
			if got.Title != tt.title {
				t.Errorf("Title = %q, want %q", got.Title, tt.title)
			}
			if got.Album != tt.album {
				t.Errorf("Album = %q, want %q", got.Album, tt.album)
			}
			if !almostEqual(got.Confidence, tt.confidence) {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.confidence)
			}
			if got.Source != SourcePathAnalysis {
				t.Errorf("Source = %q, want %q", got.Source, SourcePathAnalysis)
			}
		})
	}
}

func TestAnalyzeFilenameEnhanced(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		artist     string
		title      string
		album      string
		confidence float64
	}{
		{
			name:       "title by artist order",
			path:       "incoming/Bohemian Rhapsody by Queen.mp3",
			artist:     "Queen",
			title:      "Bohemian Rhapsody",
			confidence: 0.7,
		},
		{
			name:       "featured artist stripped",
			path:       "incoming/Jay Rock feat. Kendrick - Money Trees.mp3",
			artist:     "Jay Rock",
			title:      "Money Trees",
			confidence: 0.7,
		},
		{
			name:       "artist album title triple",
			path:       "incoming/Queen - A Night at the Opera - Love of My Life.mp3",
			artist:     "Queen",
			title:      "Love of My Life",
			album:      "A Night at the Opera",
			confidence: 0.7,
		},
		{
			name: "gibberish stays unidentified",
			path: "incoming/zzqqxx.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeFilenameEnhanced(tt.path)
			if got.Artist != tt.artist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.artist)
			}
			if got.Title != tt.title {
				t.Errorf("Title = %q, want %q", got.Title, tt.title)
			}
			if got.Album != tt.album {
				t.Errorf("Album = %q, want %q", got.Album, tt.album)
			}
			if !almostEqual(got.Confidence, tt.confidence) {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.confidence)
			}
		})
	}
}

func TestIsNonsense(t *testing.T) {
	tests := []struct {
		artist, title string
		want          bool
	}{
		{"audio", "file", true},
		{"track", "number", true},
		{"same", "same", true},
		{"1234", "Title Here", true},
		{"ab", "Something", true},
		{"Nirvana", "Lithium", false},
	}

	for _, tt := range tests {
		if got := isNonsense(tt.artist, tt.title); got != tt.want {
			t.Errorf("isNonsense(%q, %q) = %v, want %v", tt.artist, tt.title, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"01. Back In Black", "Back In Black"},
		{"Back_In_Black", "Back In Black"},
		{"Back In Black [Remastered]", "Back In Black"},
		{"Back In Black (Live)", "Back In Black"},
		{"  spaced   out  ", "spaced out"},
	}

	for _, tt := range tests {
		if got := cleanName(tt.in); got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeDashedBand(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AC-DC", true},
		{"ac-dc", true},
		{"X-Ray", true},
		{"Run-DMC", true}, // short suffix shape
		{"Pink Floyd", false},
		{"Nirvana", false},
	}

	for _, tt := range tests {
		if got := looksLikeDashedBand(tt.name); got != tt.want {
			t.Errorf("looksLikeDashedBand(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
