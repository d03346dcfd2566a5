package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend errors on every durable operation
type failingBackend struct{}

var errDisk = errors.New("disk failure")

func (failingBackend) UpsertHistory(HistoryEntry) error      { return errDisk }
func (failingBackend) ListHistory() ([]HistoryEntry, error)  { return nil, errDisk }
func (failingBackend) DeleteHistory(string) error            { return errDisk }
func (failingBackend) ClearHistory() error                   { return errDisk }
func (failingBackend) LoadUnlocks() (map[string]bool, error) { return nil, errDisk }
func (failingBackend) SaveUnlock(string) error               { return errDisk }
func (failingBackend) LoadBlob(string) ([]byte, error)       { return nil, errDisk }
func (failingBackend) SaveBlob(string, []byte) error         { return errDisk }
func (failingBackend) Close() error                          { return nil }

func TestHistoryRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, Preferences{}, nil)

	s.UpsertHistory(HistoryEntry{ContentID: "42", ContentType: "movie", Title: "Night Drive"})
	s.UpsertHistory(HistoryEntry{ContentID: "1399", ContentType: "tv", Title: "Signal Fire", LastSeason: 2, LastEpisode: 4})

	entry, ok := s.HistoryFor("1399")
	require.True(t, ok)
	assert.Equal(t, 2, entry.LastSeason)
	assert.False(t, entry.WatchedAt.IsZero())

	// A second store over the same backend sees the same entries
	s2 := New(backend, Preferences{}, nil)
	assert.Len(t, s2.History(), 2)

	s2.RemoveHistory("42")
	_, ok = s2.HistoryFor("42")
	assert.False(t, ok)

	s3 := New(backend, Preferences{}, nil)
	assert.Len(t, s3.History(), 1)

	s3.ClearHistory()
	assert.Empty(t, New(backend, Preferences{}, nil).History())
}

func TestHistoryOrderedByRecency(t *testing.T) {
	s := New(NewMemoryBackend(), Preferences{}, nil)

	now := time.Now()
	s.UpsertHistory(HistoryEntry{ContentID: "old", Title: "Old", WatchedAt: now.Add(-time.Hour)})
	s.UpsertHistory(HistoryEntry{ContentID: "new", Title: "New", WatchedAt: now})
	s.UpsertHistory(HistoryEntry{ContentID: "mid", Title: "Mid", WatchedAt: now.Add(-time.Minute)})

	entries := s.History()
	require.Len(t, entries, 3)
	assert.Equal(t, "new", entries[0].ContentID)
	assert.Equal(t, "mid", entries[1].ContentID)
	assert.Equal(t, "old", entries[2].ContentID)
}

func TestUpsertOverwritesSameID(t *testing.T) {
	s := New(NewMemoryBackend(), Preferences{}, nil)

	s.UpsertHistory(HistoryEntry{ContentID: "1399", LastSeason: 1, LastEpisode: 2})
	s.UpsertHistory(HistoryEntry{ContentID: "1399", LastSeason: 2, LastEpisode: 1})

	assert.Len(t, s.History(), 1)
	entry, _ := s.HistoryFor("1399")
	assert.Equal(t, 2, entry.LastSeason)
	assert.Equal(t, 1, entry.LastEpisode)
}

func TestUnlocksGrowMonotonically(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, Preferences{}, nil)

	require.NoError(t, s.RecordUnlock("Vault"))
	require.NoError(t, s.RecordUnlock("Cipher"))
	require.NoError(t, s.RecordUnlock("Vault"))

	unlocked, err := s.Unlocked()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Vault": true, "Cipher": true}, unlocked)

	// Unlocks survive a reload
	s2 := New(backend, Preferences{}, nil)
	unlocked, err = s2.Unlocked()
	require.NoError(t, err)
	assert.True(t, unlocked["Vault"])
	assert.True(t, unlocked["Cipher"])
}

func TestPreferences(t *testing.T) {
	backend := NewMemoryBackend()
	defaults := Preferences{Quality: "1080p", Region: "us"}
	s := New(backend, defaults, nil)

	assert.Equal(t, defaults, s.Preferences())

	s.MergePreferences(map[string]any{"quality": "720p", "downloadMode": true})
	prefs := s.Preferences()
	assert.Equal(t, "720p", prefs.Quality)
	assert.Equal(t, "us", prefs.Region)
	assert.True(t, prefs.DownloadMode)

	// Merged document persists across reloads
	s2 := New(backend, defaults, nil)
	assert.Equal(t, "720p", s2.Preferences().Quality)
	assert.True(t, s2.Preferences().DownloadMode)
}

func TestMergePreservesUnknownFields(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.SaveBlob("preferences", []byte(`{"quality":"4k","futureFlag":"keep-me"}`)))

	s := New(backend, Preferences{}, nil)
	assert.Equal(t, "4k", s.Preferences().Quality)

	s.MergePreferences(map[string]any{"region": "de"})

	blob, err := backend.LoadBlob("preferences")
	require.NoError(t, err)
	assert.Contains(t, string(blob), "keep-me")
	assert.Contains(t, string(blob), `"region":"de"`)
}

func TestNilBackendRunsMemoryOnly(t *testing.T) {
	s := New(nil, Preferences{Quality: "1080p"}, nil)

	s.UpsertHistory(HistoryEntry{ContentID: "42", Title: "Night Drive"})
	entry, ok := s.HistoryFor("42")
	require.True(t, ok)
	assert.Equal(t, "Night Drive", entry.Title)

	require.NoError(t, s.RecordUnlock("Vault"))
	unlocked, err := s.Unlocked()
	require.NoError(t, err)
	assert.True(t, unlocked["Vault"])

	assert.Equal(t, "1080p", s.Preferences().Quality)
	assert.NoError(t, s.Close())
}

func TestDegradedBackendKeepsServing(t *testing.T) {
	s := New(failingBackend{}, Preferences{Quality: "1080p"}, nil)

	// Writes succeed against the in-memory caches despite the backend
	s.UpsertHistory(HistoryEntry{ContentID: "42", Title: "Night Drive"})
	_, ok := s.HistoryFor("42")
	assert.True(t, ok)

	require.NoError(t, s.RecordUnlock("Vault"))
	unlocked, err := s.Unlocked()
	require.NoError(t, err)
	assert.True(t, unlocked["Vault"])

	s.MergePreferences(map[string]any{"region": "de"})
	assert.Equal(t, "de", s.Preferences().Region)
	assert.Equal(t, "1080p", s.Preferences().Quality)
}

func TestMalformedPreferenceBlobFallsBack(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.SaveBlob("preferences", []byte("{not json")))

	s := New(backend, Preferences{Quality: "1080p"}, nil)
	assert.Equal(t, "1080p", s.Preferences().Quality)
}
