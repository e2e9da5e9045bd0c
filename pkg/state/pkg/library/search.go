package library

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search returns tracks whose title, artist or album contain the query, ignoring case.
// Blank query returns tracks unchanged. Order of tracks is preserved and the input is never modified.
func Search(tracks []Track, query string) []Track {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tracks
	}

	return filter(tracks, func(field string) bool {
		return strings.Contains(strings.ToLower(field), query)
	})
}

// FuzzySearch works like Search, but matches fields which contain all characters of the query in order
// (e.g. "drk sd" matches "Dark Side of the Moon").
func FuzzySearch(tracks []Track, query string) []Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return tracks
	}

	return filter(tracks, func(field string) bool {
		return fuzzy.MatchFold(query, field)
	})
}

func filter(tracks []Track, matches func(field string) bool) []Track {
	result := []Track{}
	for _, track := range tracks {
		if matches(track.Title) || matches(track.Artist) || matches(track.Album) {
			result = append(result, track)
		}
	}

	return result
}
