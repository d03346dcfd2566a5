package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberpine/flicker/internal/metadata"
	"github.com/amberpine/flicker/internal/servers"
	"github.com/amberpine/flicker/internal/store"
	"github.com/amberpine/flicker/pkg/types"
)

type fakeMetadata struct {
	details     *metadata.Details
	detailsErr  error
	seasons     []metadata.Season
	seasonsErr  error
	episodes    map[int][]metadata.Episode
	episodesErr error
}

func (f *fakeMetadata) GetDetails(_ context.Context, _ types.ContentType, _ string) (*metadata.Details, error) {
	return f.details, f.detailsErr
}

func (f *fakeMetadata) GetSeasons(_ context.Context, _ string) ([]metadata.Season, error) {
	return f.seasons, f.seasonsErr
}

func (f *fakeMetadata) GetEpisodes(_ context.Context, _ string, season int) ([]metadata.Episode, error) {
	if f.episodesErr != nil {
		return nil, f.episodesErr
	}
	return f.episodes[season], nil
}

func testRegistry(t *testing.T) *servers.Registry {
	t.Helper()

	reg, err := servers.NewRegistry([]servers.ServerDescriptor{
		{
			Name:              "Alpha",
			IsRecommended:     true,
			HasSandboxSupport: true,
			URLRule: servers.StandardRule{
				Base:   servers.Obfuscate("https://alpha.test/embed/"),
				Suffix: servers.Obfuscate("?autoPlay=true"),
			},
		},
		{
			Name:   "Bravo",
			HasAds: true,
			URLRule: servers.MoviePathRule{
				Base: servers.Obfuscate("https://bravo.test/film/"),
			},
		},
		{
			Name:     "Cipher",
			IsLocked: true,
			Password: servers.Obfuscate("sesame"),
			URLRule: servers.TypeQueryRule{
				Base: servers.Obfuscate("https://cipher.test/"),
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewMemoryBackend(), store.Preferences{}, nil)
}

func tvMetadata() *fakeMetadata {
	return &fakeMetadata{
		details: &metadata.Details{Title: "Signal Fire"},
		seasons: []metadata.Season{
			{Number: 1, Name: "Season 1", EpisodeCount: 3},
			{Number: 2, Name: "Season 2", EpisodeCount: 2},
		},
		episodes: map[int][]metadata.Episode{
			1: {
				{Number: 1, Season: 1, Name: "Pilot"},
				{Number: 2, Season: 1, Name: "Fallout"},
				{Number: 3, Season: 1, Name: "Undertow"},
			},
			2: {
				{Number: 1, Season: 2, Name: "Reunion"},
				{Number: 2, Season: 2, Name: "Homecoming"},
			},
		},
	}
}

func newTVSession(t *testing.T, st *store.Store, opts Options) *Session {
	t.Helper()

	if st == nil {
		st = testStore(t)
	}
	opts.ContentType = types.ContentTV
	if opts.ContentID == "" {
		opts.ContentID = "1399"
	}
	opts.Registry = testRegistry(t)
	opts.Gate = servers.NewGate(st, nil)
	if opts.Metadata == nil {
		opts.Metadata = tvMetadata()
	}
	opts.Store = st

	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestNewValidation(t *testing.T) {
	st := testStore(t)
	gate := servers.NewGate(st, nil)
	reg := testRegistry(t)

	t.Run("empty registry", func(t *testing.T) {
		_, err := New(Options{ContentType: types.ContentMovie, ContentID: "42", Gate: gate})
		assert.ErrorIs(t, err, servers.ErrNoServers)
	})

	t.Run("missing content id", func(t *testing.T) {
		_, err := New(Options{ContentType: types.ContentMovie, Registry: reg, Gate: gate})
		assert.Error(t, err)
	})

	t.Run("invalid content type", func(t *testing.T) {
		_, err := New(Options{ContentType: "music", ContentID: "42", Registry: reg, Gate: gate})
		assert.Error(t, err)
	})

	t.Run("locked initial server", func(t *testing.T) {
		_, err := New(Options{
			ContentType: types.ContentMovie,
			ContentID:   "42",
			ServerIndex: 2,
			Registry:    reg,
			Gate:        gate,
		})
		assert.ErrorIs(t, err, ErrServerLocked)
	})
}

func TestMoviePlayback(t *testing.T) {
	st := testStore(t)
	s, err := New(Options{
		ContentType: types.ContentMovie,
		ContentID:   "42",
		Registry:    testRegistry(t),
		Gate:        servers.NewGate(st, nil),
		Metadata:    &fakeMetadata{details: &metadata.Details{Title: "Night Drive"}},
		Store:       st,
	})
	require.NoError(t, err)

	s.Bootstrap(context.Background())
	assert.Equal(t, "Night Drive", s.Title())

	frame, err := s.StartPlayback()
	require.NoError(t, err)
	assert.Equal(t, "https://alpha.test/embed/movie/42?autoPlay=true", frame.URL)
	assert.Equal(t, []string{"allow-scripts", "allow-same-origin", "allow-forms", "allow-presentation"}, frame.Sandbox)
	assert.True(t, s.PlayerStarted())

	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "42", history[0].ContentID)
	assert.Equal(t, "Night Drive", history[0].Title)
	assert.Zero(t, history[0].LastSeason)
}

func TestSeriesBootstrapSeedsFirstSeason(t *testing.T) {
	s := newTVSession(t, nil, Options{})

	s.Bootstrap(context.Background())
	assert.Equal(t, 1, s.Season())
	assert.Equal(t, 1, s.Episode())
	assert.Equal(t, StateSeasonSelected, s.State())

	s.LoadEpisodes(context.Background())
	assert.Equal(t, StateEpisodeListReady, s.State())
	assert.Len(t, s.Episodes(), 3)

	frame, err := s.StartPlayback()
	require.NoError(t, err)
	assert.Equal(t, "https://alpha.test/embed/tv/1399/1/1?autoPlay=true", frame.URL)
}

func TestDeepLinkSeedsState(t *testing.T) {
	s := newTVSession(t, nil, Options{Season: 2, Episode: 2})

	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	assert.Equal(t, 2, s.Season())
	assert.Equal(t, 2, s.Episode())

	frame, err := s.StartPlayback()
	require.NoError(t, err)
	assert.Equal(t, "https://alpha.test/embed/tv/1399/2/2?autoPlay=true", frame.URL)
}

func TestHistorySeedsState(t *testing.T) {
	st := testStore(t)
	st.UpsertHistory(store.HistoryEntry{
		ContentID:   "1399",
		ContentType: "tv",
		Title:       "Signal Fire",
		LastSeason:  2,
		LastEpisode: 1,
	})

	s := newTVSession(t, st, Options{})
	assert.Equal(t, 2, s.Season())
	assert.Equal(t, 1, s.Episode())
}

func TestSeasonChangeResetsEpisode(t *testing.T) {
	s := newTVSession(t, nil, Options{})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	require.NoError(t, s.SelectEpisode(3))
	_, err := s.StartPlayback()
	require.NoError(t, err)

	s.SelectSeason(2)
	assert.Equal(t, 2, s.Season())
	assert.Equal(t, 1, s.Episode())
	assert.False(t, s.PlayerStarted())
	assert.Nil(t, s.Frame())
}

func TestEpisodeChangeTearsDownPlayer(t *testing.T) {
	s := newTVSession(t, nil, Options{})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	_, err := s.StartPlayback()
	require.NoError(t, err)

	t.Run("same episode is a no-op", func(t *testing.T) {
		require.NoError(t, s.SelectEpisode(s.Episode()))
		assert.True(t, s.PlayerStarted())
	})

	t.Run("different episode unmounts", func(t *testing.T) {
		require.NoError(t, s.SelectEpisode(2))
		assert.False(t, s.PlayerStarted())
		assert.Nil(t, s.Frame())
	})

	t.Run("unknown episode is rejected", func(t *testing.T) {
		assert.Error(t, s.SelectEpisode(99))
		assert.Error(t, s.SelectEpisode(0))
	})
}

func TestStaleEpisodeFetchDiscarded(t *testing.T) {
	s := newTVSession(t, nil, Options{})
	s.Bootstrap(context.Background())

	// Season A's fetch starts first, then the user switches to season 2
	// and its fetch completes before A's does.
	genA, seasonA := s.BeginEpisodeLoad()
	assert.Equal(t, 1, seasonA)

	s.SelectSeason(2)
	genB, seasonB := s.BeginEpisodeLoad()
	assert.Equal(t, 2, seasonB)

	meta := tvMetadata()
	require.True(t, s.CommitEpisodes(genB, meta.episodes[2], nil))
	assert.Equal(t, StateEpisodeListReady, s.State())

	require.False(t, s.CommitEpisodes(genA, meta.episodes[1], nil))
	assert.Len(t, s.Episodes(), 2)
	assert.Equal(t, "Reunion", s.Episodes()[0].Name)
}

func TestCommitClampsOutOfRangeEpisode(t *testing.T) {
	s := newTVSession(t, nil, Options{Season: 1, Episode: 3})
	s.Bootstrap(context.Background())

	s.SelectSeason(2)
	assert.Equal(t, 1, s.Episode())

	// Even a directly seeded out-of-range episode cannot survive a commit
	s2 := newTVSession(t, nil, Options{Season: 2, Episode: 9})
	s2.Bootstrap(context.Background())
	s2.LoadEpisodes(context.Background())
	assert.Equal(t, 1, s2.Episode())
}

func TestEpisodeFetchFailurePreservesSeason(t *testing.T) {
	meta := tvMetadata()
	meta.episodesErr = errors.New("upstream unavailable")

	s := newTVSession(t, nil, Options{Season: 2, Metadata: meta})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	assert.Equal(t, StateEpisodeListReady, s.State())
	assert.Empty(t, s.Episodes())
	assert.Equal(t, 2, s.Season())
}

func TestServerSwitching(t *testing.T) {
	s := newTVSession(t, nil, Options{})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	_, err := s.StartPlayback()
	require.NoError(t, err)
	assert.True(t, s.SandboxEnabled())

	t.Run("switch tears down and re-seeds sandbox", func(t *testing.T) {
		require.NoError(t, s.SelectServer(1))
		srv, idx := s.ActiveServer()
		assert.Equal(t, "Bravo", srv.Name)
		assert.Equal(t, 1, idx)
		assert.False(t, s.SandboxEnabled())
		assert.False(t, s.PlayerStarted())
	})

	t.Run("movie-only server rejects series", func(t *testing.T) {
		_, err := s.StartPlayback()
		assert.ErrorIs(t, err, ErrUnsupportedTitle)
	})

	t.Run("out of range index", func(t *testing.T) {
		assert.Error(t, s.SelectServer(7))
	})
}

func TestLockedServerFlow(t *testing.T) {
	st := testStore(t)
	s := newTVSession(t, st, Options{})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	assert.ErrorIs(t, s.SelectServer(2), ErrServerLocked)

	assert.ErrorIs(t, s.UnlockServer(2, "open"), ErrWrongPassword)
	_, idx := s.ActiveServer()
	assert.Equal(t, 0, idx)

	require.NoError(t, s.UnlockServer(2, "sesame"))
	srv, idx := s.ActiveServer()
	assert.Equal(t, "Cipher", srv.Name)
	assert.Equal(t, 2, idx)

	// Unlock survives a new session over the same store
	s2 := newTVSession(t, st, Options{ServerIndex: 2})
	srv2, _ := s2.ActiveServer()
	assert.Equal(t, "Cipher", srv2.Name)
	require.NoError(t, s2.SelectServer(0))
	require.NoError(t, s2.SelectServer(2))
}

func TestSandboxOmittedWithoutSupport(t *testing.T) {
	st := testStore(t)
	s, err := New(Options{
		ContentType: types.ContentMovie,
		ContentID:   "42",
		ServerIndex: 1,
		Registry:    testRegistry(t),
		Gate:        servers.NewGate(st, nil),
		Store:       st,
	})
	require.NoError(t, err)

	frame, err := s.StartPlayback()
	require.NoError(t, err)
	assert.Equal(t, "https://bravo.test/film/42", frame.URL)
	assert.Empty(t, frame.Sandbox)

	// Forcing the flag on still grants nothing on an unsupported server
	s.ToggleSandbox()
	frame, err = s.StartPlayback()
	require.NoError(t, err)
	assert.Empty(t, frame.Sandbox)
}

func TestStopPlayback(t *testing.T) {
	s := newTVSession(t, nil, Options{})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	_, err := s.StartPlayback()
	require.NoError(t, err)

	s.StopPlayback()
	assert.False(t, s.PlayerStarted())
	assert.Nil(t, s.Frame())
}

func TestEmbedURLWithoutMounting(t *testing.T) {
	s := newTVSession(t, nil, Options{Season: 1, Episode: 2})
	s.Bootstrap(context.Background())

	url, ok := s.EmbedURL()
	require.True(t, ok)
	assert.Equal(t, "https://alpha.test/embed/tv/1399/1/2?autoPlay=true", url)
	assert.False(t, s.PlayerStarted())
}

func TestHistoryRecordedOnSeriesPlayback(t *testing.T) {
	st := testStore(t)
	s := newTVSession(t, st, Options{Season: 2, Episode: 2})
	s.Bootstrap(context.Background())
	s.LoadEpisodes(context.Background())

	_, err := s.StartPlayback()
	require.NoError(t, err)

	entry, ok := st.HistoryFor("1399")
	require.True(t, ok)
	assert.Equal(t, "Signal Fire", entry.Title)
	assert.Equal(t, 2, entry.LastSeason)
	assert.Equal(t, 2, entry.LastEpisode)
	assert.Equal(t, 2, entry.TotalSeasons)
}
