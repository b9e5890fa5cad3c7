package recognize

import "strings"

// Ratio returns a 0.0-1.0 similarity between two strings, computed as
// 2*M/T where M is the total length of the longest matching blocks and
// T the combined length (the SequenceMatcher ratio). Comparison is
// case-sensitive; callers lowercase first.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingRunes(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingRunes sums the lengths of the longest common blocks, found by
// recursing on either side of the longest match.
func matchingRunes(a, b []rune) int {
	size, ai, bi := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	sum := size
	sum += matchingRunes(a[:ai], b[:bi])
	sum += matchingRunes(a[ai+size:], b[bi+size:])
	return sum
}

func longestMatch(a, b []rune) (size, ai, bi int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] is the length of the match ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return size, ai, bi
}

// ScoreMatch computes the confidence of a candidate against a query as
// the average of per-field similarity ratios, case-insensitive, over
// whichever fields are non-empty on both sides. Returns 0.0 when no
// field pair is comparable.
func ScoreMatch(queryArtist, queryTitle, queryAlbum, artist, title, album string) float64 {
	var sum float64
	var n int

	if queryArtist != "" && artist != "" {
		sum += Ratio(strings.ToLower(queryArtist), strings.ToLower(artist))
		n++
	}
	if queryTitle != "" && title != "" {
		sum += Ratio(strings.ToLower(queryTitle), strings.ToLower(title))
		n++
	}
	if queryAlbum != "" && album != "" {
		sum += Ratio(strings.ToLower(queryAlbum), strings.ToLower(album))
		n++
	}

	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// ScoreAlbumMatch scores a candidate release's track list against the
// titles of the local files: exact (case-insensitive) matches count
// 1.0, fuzzy matches 0.7, divided by the number of files, plus a flat
// 0.1 bonus when the track counts differ by at most 2. Clamped to 1.0.
func ScoreAlbumMatch(fileTitles, albumTrackTitles []string) float64 {
	files := normalizeTitles(fileTitles)
	tracks := normalizeTitles(albumTrackTitles)
	if len(files) == 0 || len(tracks) == 0 {
		return 0.0
	}

	trackSet := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		trackSet[t] = true
	}

	var exact, fuzzy int
	for _, ft := range files {
		if trackSet[ft] {
			exact++
			continue
		}
		for _, at := range tracks {
			if strings.Contains(at, ft) || strings.Contains(ft, at) || charOverlap(ft, at) >= 0.8 {
				fuzzy++
				break
			}
		}
	}

	confidence := (float64(exact)*1.0 + float64(fuzzy)*0.7) / float64(len(files))

	if abs(len(tracks)-len(files)) <= 2 {
		confidence += 0.1
	}

	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

// charOverlap is the share of the shorter string's characters that
// occur anywhere in the longer one, relative to the longer's length.
// Crude, but cheap; only used as a last fuzzy-match resort.
func charOverlap(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	matches := 0
	for _, c := range shorter {
		if strings.ContainsRune(longer, c) {
			matches++
		}
	}
	return float64(matches) / float64(len([]rune(longer)))
}

func normalizeTitles(titles []string) []string {
	var out []string
	for _, t := range titles {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
