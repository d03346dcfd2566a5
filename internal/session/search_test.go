package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amberpine/flicker/internal/metadata"
)

func TestFilterEpisodes(t *testing.T) {
	episodes := []metadata.Episode{
		{Number: 1, Season: 2, Name: "Reunion", Overview: "Old friends return to the valley."},
		{Number: 2, Season: 2, Name: "Homecoming", Overview: "The town prepares a festival."},
		{Number: 3, Season: 2, Name: "Episode Zero", Overview: "A flashback to 1987."},
		{Number: 12, Season: 2, Name: "Twelve Hours", Overview: "A night shift goes wrong."},
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"blank returns all", "   ", []int{1, 2, 3, 12}},
		{"episode word", "episode 2", []int{2}},
		{"episode word no space", "Episode2", []int{2}},
		{"ep shorthand", "ep 12", []int{12}},
		{"season qualified match", "s2e3", []int{3}},
		{"season qualified with ep", "S2 EP 1", []int{1}},
		{"season qualified mismatch", "s1e1", nil},
		{"bare number", "12", []int{12}},
		{"bare number no such episode", "7", nil},
		{"title substring", "home", []int{2}},
		{"overview substring", "festival", []int{2}},
		{"case insensitive substring", "REUNION", []int{1}},
		{"no match", "finale", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEpisodes(episodes, 2, tt.query)

			var numbers []int
			for _, ep := range got {
				numbers = append(numbers, ep.Number)
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}

func TestFilterEpisodesEmptyList(t *testing.T) {
	assert.Empty(t, FilterEpisodes(nil, 1, ""))
	assert.Empty(t, FilterEpisodes(nil, 1, "episode 1"))
}
