package session

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/amberpine/flicker/internal/metadata"
)

// Episode queries come in a few shapes: "episode 5", "ep 5", "s2e5",
// "s2 ep 5", or a bare number. Anything else is a substring search over
// the episode title and overview.
var (
	episodeWordPattern   = regexp.MustCompile(`(?i)^episode\s*(\d+)$`)
	episodeShortPattern  = regexp.MustCompile(`(?i)^ep\s*(\d+)$`)
	seasonEpisodePattern = regexp.MustCompile(`(?i)^s(\d+)\s*ep?\s*(\d+)$`)
	bareNumberPattern    = regexp.MustCompile(`^\d+$`)
)

// FilterEpisodes narrows the loaded episode list by a free-form query.
// Numeric patterns match on episode number; a season-qualified pattern
// that names a different season matches nothing. A blank query returns
// the full list.
func FilterEpisodes(episodes []metadata.Episode, season int, query string) []metadata.Episode {
	q := strings.TrimSpace(query)
	if q == "" {
		return append([]metadata.Episode(nil), episodes...)
	}

	if num, qualSeason, ok := parseEpisodeQuery(q); ok {
		if qualSeason > 0 && qualSeason != season {
			return nil
		}
		var out []metadata.Episode
		for _, ep := range episodes {
			if ep.Number == num {
				out = append(out, ep)
			}
		}
		return out
	}

	lower := strings.ToLower(q)
	var out []metadata.Episode
	for _, ep := range episodes {
		if strings.Contains(strings.ToLower(ep.Name), lower) ||
			strings.Contains(strings.ToLower(ep.Overview), lower) {
			out = append(out, ep)
		}
	}
	return out
}

// parseEpisodeQuery extracts an episode number, and optionally a season
// qualifier, from a structured query
func parseEpisodeQuery(q string) (episode, season int, ok bool) {
	if m := seasonEpisodePattern.FindStringSubmatch(q); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		return episode, season, true
	}
	if m := episodeWordPattern.FindStringSubmatch(q); m != nil {
		episode, _ = strconv.Atoi(m[1])
		return episode, 0, true
	}
	if m := episodeShortPattern.FindStringSubmatch(q); m != nil {
		episode, _ = strconv.Atoi(m[1])
		return episode, 0, true
	}
	if bareNumberPattern.MatchString(q) {
		episode, _ = strconv.Atoi(q)
		return episode, 0, true
	}
	return 0, 0, false
}
