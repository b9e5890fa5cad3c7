package recognize

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Filename patterns for artist/title extraction, tried in order. The
// first match wins.
var filenamePatterns = []*regexp.Regexp{
	// "01 - Artist - Title.mp3" (track number, then artist - title)
	regexp.MustCompile(`(?i)^\d+[.\-\s]+(.+?)\s*-\s*(.+?)\.mp3$`),
	// "Artist - Title.mp3"
	regexp.MustCompile(`(?i)^(.+?)\s*-\s*(.+?)\.mp3$`),
	// "Artist_Title.mp3"
	regexp.MustCompile(`(?i)^(.+?)_(.+?)\.mp3$`),
	// "Track01 Some Name.mp3" (last word is probably the title)
	regexp.MustCompile(`(?i)^track\d+\s+(.+)\s+(\w+)\.mp3$`),
}

// Extra patterns for the enhanced pass, used when plain path analysis
// found no signal.
var enhancedPatterns = []struct {
	re      *regexp.Regexp
	swapped bool // "Title by Artist" order
	album   bool // middle group is the album
}{
	{re: regexp.MustCompile(`(?i)^(.+?)\s+feat\.\s+.+?\s*-\s*(.+)$`)},
	{re: regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`), swapped: true},
	{re: regexp.MustCompile(`(?i)^(.+?)\s*-\s*(.+?)\s*-\s*(.+)$`), album: true},
	{re: regexp.MustCompile(`^\d+\s*[.\-]\s*(.+?)\s*[.\-]\s*(.+)$`)},
}

var (
	yearPattern      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	albumWordPattern = regexp.MustCompile(`(?i)\b(album|ep|lp|single|compilation|greatest\s+hits)\b`)
	bracketPattern   = regexp.MustCompile(`[\[(].*[\])]`)

	leadingTrackNum = regexp.MustCompile(`^\d+[.\-\s]*`)
	bracketedChunk  = regexp.MustCompile(`\s*\[.*?\]\s*`)
	parenChunk      = regexp.MustCompile(`\s*\(.*?\)\s*`)
	underscoreRun   = regexp.MustCompile(`_+`)
	spaceRun        = regexp.MustCompile(`\s+`)

	allCapsDashed = regexp.MustCompile(`^[A-Z]{2,4}-[A-Z]{2,4}$`)
	shortSuffix   = regexp.MustCompile(`^.+-\w{1,3}$`)
	shortPrefix   = regexp.MustCompile(`^\w{1,3}-.+$`)
)

// genericFolders are directory names that carry no artist/album signal.
var genericFolders = map[string]bool{
	"music": true, "mp3": true, "audio": true, "songs": true,
	"tracks": true, "downloads": true, "new folder": true,
	"untitled": true, "misc": true, "various": true, "unknown": true,
	"mixed": true, "temp": true, "tmp": true, "test": true,
}

// knownDashedBands is a short explicit list of band names containing a
// hyphen, so they survive the artist/title split.
var knownDashedBands = map[string]bool{
	"ac-dc": true, "dc-ac": true, "x-ray": true, "k-pop": true,
}

// nonsensePairs are placeholder artist/title combinations that show up
// in rips and must never be reported as an identification.
var nonsensePairs = map[[2]string]bool{
	{"ohne", "id3"}:      true,
	{"test", "mp3"}:      true,
	{"audio", "file"}:    true,
	{"track", "number"}:  true,
	{"unknown", "title"}: true,
	{"noname", "mp3"}:    true,
	{"untitled", "song"}: true,
}

// AnalyzePath guesses artist/title/album from a file's name and its
// enclosing directories. Pure string analysis, no file I/O. The
// returned confidence is the maximum of the directory-rule and
// filename-rule confidences; a zero-confidence candidate means no
// usable signal.
func AnalyzePath(filePath string) Candidate {
	normalized := strings.ReplaceAll(filePath, `\`, "/")

	result := analyzeDirectories(normalized)
	result.Source = SourcePathAnalysis

	name := analyzeFilename(filepath.Base(normalized))
	if name.Confidence > 0 {
		// Filename wins for artist/title, directory wins for album.
		if result.Artist == "" && name.Artist != "" {
			result.Artist = name.Artist
		}
		if result.Title == "" && name.Title != "" {
			result.Title = name.Title
		}
		if name.Confidence > result.Confidence {
			result.Confidence = name.Confidence
		}
	}

	return dropShortFields(result)
}

// analyzeDirectories applies the directory-structure rules in priority
// order: "artist - album" dir (0.8), artist over an album-looking dir
// (0.7), artist/album wrapped in a generic library folder (0.6), bare
// non-generic parent as album (0.4).
func analyzeDirectories(path string) Candidate {
	var c Candidate

	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return c
	}

	parent := ""
	grandparent := ""
	greatGrandparent := ""
	if len(parts) >= 2 {
		parent = parts[len(parts)-2]
	}
	if len(parts) >= 3 {
		grandparent = parts[len(parts)-3]
	}
	if len(parts) >= 4 {
		greatGrandparent = parts[len(parts)-4]
	}

	switch {
	case strings.Contains(parent, " - "):
		halves := strings.SplitN(parent, " - ", 2)
		c.Artist = cleanName(halves[0])
		c.Album = cleanName(halves[1])
		c.Confidence = 0.8

	case grandparent != "" && looksLikeAlbum(parent) && !isGenericFolder(grandparent):
		c.Artist = cleanName(grandparent)
		c.Album = cleanName(parent)
		c.Confidence = 0.7

	case greatGrandparent != "" && isGenericFolder(greatGrandparent) &&
		!isGenericFolder(grandparent) && !isGenericFolder(parent):
		c.Artist = cleanName(grandparent)
		c.Album = cleanName(parent)
		c.Confidence = 0.6

	case parent != "" && !isGenericFolder(parent):
		c.Album = cleanName(parent)
		c.Confidence = 0.4
	}

	return c
}

// analyzeFilename tries the fixed filename patterns in order and
// returns the first split that survives the nonsense filter.
func analyzeFilename(filename string) Candidate {
	var c Candidate

	for _, p := range filenamePatterns {
		m := p.FindStringSubmatch(filename)
		if m == nil {
			continue
		}

		artist := cleanName(m[1])
		title := cleanName(m[2])

		// A short first half next to a hyphen may be a fragment of a
		// hyphenated band name (AC-DC). Re-split keeping the band
		// name whole before trusting the regex split.
		if looksLikeDashedBand(artist) || dashedBandPrefix(filename) {
			if a, t := smartSplit(filename); a != "" && t != "" {
				artist, title = a, t
			}
		}

		if artist == "" || title == "" || isNonsense(artist, title) {
			continue
		}

		c.Artist = artist
		c.Title = title
		if strings.Contains(filename, " - ") {
			c.Confidence = 0.8
		} else {
			c.Confidence = 0.6
		}
		return c
	}

	return c
}

// AnalyzeFilenameEnhanced applies the wider pattern set ("feat.",
// "Title by Artist", "Artist - Album - Title"). Run only when plain
// path analysis produced no signal.
func AnalyzeFilenameEnhanced(filePath string) Candidate {
	c := Candidate{Source: SourceFilenameAnalysis}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	for _, p := range enhancedPatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		var artist, title, album string
		if p.album {
			artist = cleanName(m[1])
			album = cleanName(m[2])
			title = cleanName(m[3])
		} else if p.swapped {
			title = cleanName(m[1])
			artist = cleanName(m[2])
		} else {
			artist = cleanName(m[1])
			title = cleanName(m[2])
		}

		if artist == "" || title == "" || isNonsense(artist, title) {
			continue
		}

		c.Artist = artist
		c.Title = title
		c.Album = album
		c.Confidence = 0.7
		return c
	}

	return c
}

// smartSplit re-splits a filename on " - " so hyphenated band names
// stay whole: "AC-DC - Back In Black" -> ("AC-DC", "Back In Black").
func smartSplit(filename string) (artist, title string) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = leadingTrackNum.ReplaceAllString(name, "")

	if !strings.Contains(name, " - ") {
		return "", ""
	}

	parts := strings.Split(name, " - ")
	if len(parts) == 2 {
		return cleanName(parts[0]), cleanName(parts[1])
	}

	// More than two segments: the first two may together be a
	// hyphenated band name.
	firstTwo := parts[0] + " - " + parts[1]
	if looksLikeDashedBand(firstTwo) {
		return cleanName(firstTwo), cleanName(strings.Join(parts[2:], " - "))
	}
	return cleanName(parts[0]), cleanName(strings.Join(parts[1:], " - "))
}

// looksLikeDashedBand reports whether a name matches known
// hyphenated-band shapes or the explicit list.
func looksLikeDashedBand(name string) bool {
	if knownDashedBands[strings.ToLower(name)] {
		return true
	}
	if !strings.Contains(name, "-") {
		return false
	}
	return allCapsDashed.MatchString(name) ||
		shortSuffix.MatchString(name) ||
		shortPrefix.MatchString(name)
}

// dashedBandPrefix reports whether the filename starts with something
// like "AC-DC - ": a dashed token before the first spaced separator.
func dashedBandPrefix(filename string) bool {
	name := leadingTrackNum.ReplaceAllString(filename, "")
	idx := strings.Index(name, " - ")
	if idx < 0 {
		return false
	}
	return looksLikeDashedBand(strings.TrimSpace(name[:idx]))
}

func looksLikeAlbum(dirname string) bool {
	return yearPattern.MatchString(dirname) ||
		albumWordPattern.MatchString(dirname) ||
		bracketPattern.MatchString(dirname)
}

func isGenericFolder(dirname string) bool {
	return genericFolders[strings.ToLower(strings.TrimSpace(dirname))]
}

// isNonsense rejects placeholder artist/title pairs: identical values,
// very short or purely numeric fields, and the fixed denylist.
func isNonsense(artist, title string) bool {
	a := strings.ToLower(strings.TrimSpace(artist))
	t := strings.ToLower(strings.TrimSpace(title))

	if nonsensePairs[[2]string{a, t}] {
		return true
	}
	if len(a) <= 2 || len(t) <= 2 {
		return true
	}
	if isDigits(a) || isDigits(t) {
		return true
	}
	return a == t
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// cleanName strips leading track numbers, bracketed chunks,
// underscores and repeated whitespace from an extracted name.
func cleanName(name string) string {
	name = leadingTrackNum.ReplaceAllString(name, "")
	name = bracketedChunk.ReplaceAllString(name, " ")
	name = parenChunk.ReplaceAllString(name, " ")
	name = underscoreRun.ReplaceAllString(name, " ")
	name = spaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// dropShortFields nils out one-character leftovers after cleaning.
func dropShortFields(c Candidate) Candidate {
	if len(c.Artist) <= 1 {
		c.Artist = ""
	}
	if len(c.Title) <= 1 {
		c.Title = ""
	}
	if len(c.Album) <= 1 {
		c.Album = ""
	}
	return c
}
