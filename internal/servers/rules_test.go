package servers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amberpine/flicker/pkg/types"
)

func descriptorWith(rule Rule) ServerDescriptor {
	return ServerDescriptor{Name: "Test", URLRule: rule}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		rule        Rule
		contentType types.ContentType
		id          string
		season      int
		episode     int
		want        string
		wantOK      bool
	}{
		{
			name:        "standard movie",
			rule:        StandardRule{Base: Obfuscate("https://x/embed/"), Suffix: Obfuscate("?autoPlay=true")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://x/embed/movie/42?autoPlay=true",
			wantOK:      true,
		},
		{
			name:        "standard tv",
			rule:        StandardRule{Base: Obfuscate("https://x/embed/"), Suffix: Obfuscate("?autoPlay=true")},
			contentType: types.ContentTV,
			id:          "1399",
			season:      2,
			episode:     4,
			want:        "https://x/embed/tv/1399/2/4?autoPlay=true",
			wantOK:      true,
		},
		{
			name:        "standard tv without suffix",
			rule:        StandardRule{Base: Obfuscate("https://x/embed/")},
			contentType: types.ContentTV,
			id:          "1399",
			season:      1,
			episode:     1,
			want:        "https://x/embed/tv/1399/1/1",
			wantOK:      true,
		},
		{
			name:        "movie path movie",
			rule:        MoviePathRule{Base: Obfuscate("https://y/film/"), Suffix: Obfuscate("/play")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://y/film/42/play",
			wantOK:      true,
		},
		{
			name:        "movie path rejects tv",
			rule:        MoviePathRule{Base: Obfuscate("https://y/film/")},
			contentType: types.ContentTV,
			id:          "1399",
			season:      1,
			episode:     1,
			wantOK:      false,
		},
		{
			name:        "query id movie",
			rule:        QueryIDRule{Base: Obfuscate("https://z/player?id=")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://z/player?id=42",
			wantOK:      true,
		},
		{
			name:        "query id rejects tv",
			rule:        QueryIDRule{Base: Obfuscate("https://z/player?id=")},
			contentType: types.ContentTV,
			id:          "1399",
			wantOK:      false,
		},
		{
			name:        "tmdb prefix movie",
			rule:        TMDBPrefixRule{Base: Obfuscate("https://w/v/"), Suffix: Obfuscate(".html")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://w/v/tmdb-movie-42.html",
			wantOK:      true,
		},
		{
			name:        "tmdb prefix rejects tv",
			rule:        TMDBPrefixRule{Base: Obfuscate("https://w/v/")},
			contentType: types.ContentTV,
			id:          "1399",
			wantOK:      false,
		},
		{
			name:        "type query movie",
			rule:        TypeQueryRule{Base: Obfuscate("https://q/")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://q/movie?tmdb=42",
			wantOK:      true,
		},
		{
			name:        "type query tv",
			rule:        TypeQueryRule{Base: Obfuscate("https://q/")},
			contentType: types.ContentTV,
			id:          "1399",
			season:      3,
			episode:     7,
			want:        "https://q/tv?tmdb=1399&season=3&episode=7",
			wantOK:      true,
		},
		{
			name:        "alt tv path tv",
			rule:        AltTVPathRule{Base: Obfuscate("https://a/")},
			contentType: types.ContentTV,
			id:          "1399",
			season:      1,
			episode:     2,
			want:        "https://a/tv?tmdb=1399&season=1&episode=2",
			wantOK:      true,
		},
		{
			name:        "alt tv path movie",
			rule:        AltTVPathRule{Base: Obfuscate("https://a/")},
			contentType: types.ContentMovie,
			id:          "42",
			want:        "https://a/movie/42",
			wantOK:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(descriptorWith(tt.rule), tt.contentType, tt.id, tt.season, tt.episode)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveGuards(t *testing.T) {
	t.Run("missing rule", func(t *testing.T) {
		_, ok := Resolve(ServerDescriptor{Name: "NoRule"}, types.ContentMovie, "42", 0, 0)
		assert.False(t, ok)
	})

	t.Run("empty id", func(t *testing.T) {
		rule := StandardRule{Base: Obfuscate("https://x/")}
		_, ok := Resolve(descriptorWith(rule), types.ContentMovie, "", 0, 0)
		assert.False(t, ok)
	})
}

func TestCatalogResolvesMovies(t *testing.T) {
	// Every cataloged server must produce a well-formed movie URL or
	// declare itself series-capable
	for _, s := range Catalog() {
		t.Run(s.Name, func(t *testing.T) {
			url, ok := Resolve(s, types.ContentMovie, "42", 0, 0)
			if !ok {
				t.Skipf("%s has no movie endpoint", s.Name)
			}
			assert.Contains(t, url, "https://")
			assert.Contains(t, url, "42")
		})
	}
}

func TestCatalogSeriesSupport(t *testing.T) {
	// Series resolution either succeeds with season and episode wired
	// into the URL, or cleanly reports the server as movie-only
	for _, s := range Catalog() {
		t.Run(s.Name, func(t *testing.T) {
			url, ok := Resolve(s, types.ContentTV, "1399", 2, 4)
			if !ok {
				assert.Empty(t, url)
				return
			}
			assert.Contains(t, url, "1399")
			assert.Contains(t, url, "2")
			assert.Contains(t, url, "4")
		})
	}
}
