package recognize

import "strings"

const mergeTrustThreshold = 0.5

// MergeProviderResults reconciles a structured-database candidate
// (MusicBrainz) with a community-tag-database candidate (Last.fm)
// obtained for the same file in the same pass.
//
// Core fields come from the structured database when it is trusted
// (confidence > 0.5), else from whichever candidate is primary.
// Identifiers and cover art only ever come from the structured
// database. Genres are the community database's top 3 followed by the
// structured database's top 3 not already present, capped at 6.
func MergeProviderResults(structured, community Candidate) Candidate {
	primary := structured
	if community.Confidence > structured.Confidence {
		primary = community
	}

	merged := primary

	if structured.Confidence > mergeTrustThreshold {
		merged.Artist = structured.Artist
		merged.Title = structured.Title
		merged.Album = structured.Album
		merged.Year = structured.Year
		merged.TrackNumber = structured.TrackNumber
		merged.TotalTracks = structured.TotalTracks
	}

	merged.ReleaseID = structured.ReleaseID
	merged.RecordingID = structured.RecordingID
	merged.ArtistID = structured.ArtistID
	merged.CoverURL = structured.CoverURL

	merged.Genres = mergeGenres(community.Genres, structured.Genres)
	if len(merged.Genres) > 0 {
		merged.Genre = merged.Genres[0]
	}

	if structured.Confidence > merged.Confidence {
		merged.Confidence = structured.Confidence
	}
	if community.Confidence > merged.Confidence {
		merged.Confidence = community.Confidence
	}

	if structured.Confidence > mergeTrustThreshold && community.Confidence > mergeTrustThreshold {
		merged.Source = structured.Source + " + " + community.Source
	} else {
		merged.Source = primary.Source
	}

	return merged
}

// mergeGenres unions up to 3 community tags with up to 3 structured
// tags not already present, capped at 6 total.
func mergeGenres(community, structured []string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, g := range community {
		if len(out) >= 3 {
			break
		}
		key := normalizeGenre(g)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}

	added := 0
	for _, g := range structured {
		if added >= 3 || len(out) >= 6 {
			break
		}
		key := normalizeGenre(g)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
		added++
	}

	return out
}

func normalizeGenre(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}
