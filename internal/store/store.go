package store

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/amberpine/flicker/internal/config"
)

const preferencesKey = "preferences"

// Store is the durable local state of the front-end: watch history,
// unlocked servers, and the preference document, as three independently
// namespaced stores. All operations are best-effort: a failing durable
// backend degrades the affected namespace to memory for the rest of the
// session, and storage errors never reach the caller as hard failures.
type Store struct {
	mu      sync.Mutex
	durable Backend
	logger  *slog.Logger

	history  map[string]HistoryEntry
	unlocks  map[string]bool
	prefs    Preferences
	prefsRaw map[string]any

	historyDegraded bool
	unlocksDegraded bool
	prefsDegraded   bool
}

// Open constructs the store on top of the sqlite backend. When the
// database cannot be opened the store runs memory-only for the session;
// this is logged, never fatal.
func Open(cfg *config.DatabaseConfig, defaults Preferences, logger *slog.Logger) *Store {
	backend, err := OpenSQL(cfg)
	if err != nil {
		if logger != nil {
			logger.Warn("local storage unavailable, state will not survive this session", "error", err)
		}
		backend = nil
	}
	return New(backend, defaults, logger)
}

// New constructs the store on top of an injected backend. A nil backend
// means memory-only from the start.
func New(backend Backend, defaults Preferences, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		durable:  backend,
		logger:   logger,
		history:  make(map[string]HistoryEntry),
		unlocks:  make(map[string]bool),
		prefs:    defaults,
		prefsRaw: make(map[string]any),
	}

	if backend == nil {
		s.historyDegraded = true
		s.unlocksDegraded = true
		s.prefsDegraded = true
		return s
	}

	s.load(defaults)
	return s
}

// load seeds the in-memory caches from the durable backend, degrading
// each namespace independently on failure
func (s *Store) load(defaults Preferences) {
	entries, err := s.durable.ListHistory()
	if err != nil {
		s.logger.Warn("failed to load watch history, continuing memory-only", "error", err)
		s.historyDegraded = true
	} else {
		for _, e := range entries {
			s.history[e.ContentID] = e
		}
	}

	unlocks, err := s.durable.LoadUnlocks()
	if err != nil {
		s.logger.Warn("failed to load unlocked servers, continuing memory-only", "error", err)
		s.unlocksDegraded = true
	} else {
		for name := range unlocks {
			s.unlocks[name] = true
		}
	}

	blob, err := s.durable.LoadBlob(preferencesKey)
	if err != nil {
		s.logger.Warn("failed to load preferences, using defaults", "error", err)
		s.prefsDegraded = true
		return
	}
	if len(blob) == 0 {
		return
	}

	prefs := defaults
	if err := json.Unmarshal(blob, &prefs); err != nil {
		s.logger.Warn("malformed preference blob, using defaults", "error", err)
		return
	}
	var raw map[string]any
	_ = json.Unmarshal(blob, &raw)

	s.prefs = prefs
	if raw != nil {
		s.prefsRaw = raw
	}
}

// History returns all watch-history entries, most recent first
func (s *Store) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]HistoryEntry, 0, len(s.history))
	for _, e := range s.history {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})
	return entries
}

// HistoryFor returns the entry for a content id, if any
func (s *Store) HistoryFor(contentID string) (HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.history[contentID]
	return e, ok
}

// UpsertHistory creates or overwrites the entry for the content id
func (s *Store) UpsertHistory(e HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.WatchedAt.IsZero() {
		e.WatchedAt = time.Now()
	}
	s.history[e.ContentID] = e

	if s.historyDegraded {
		return
	}
	if err := s.durable.UpsertHistory(e); err != nil {
		s.logger.Warn("failed to persist watch history, continuing memory-only", "id", e.ContentID, "error", err)
		s.historyDegraded = true
	}
}

// RemoveHistory deletes the entry for a content id
func (s *Store) RemoveHistory(contentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.history, contentID)

	if s.historyDegraded {
		return
	}
	if err := s.durable.DeleteHistory(contentID); err != nil {
		s.logger.Warn("failed to remove watch history entry", "id", contentID, "error", err)
		s.historyDegraded = true
	}
}

// ClearHistory removes all watch-history entries
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make(map[string]HistoryEntry)

	if s.historyDegraded {
		return
	}
	if err := s.durable.ClearHistory(); err != nil {
		s.logger.Warn("failed to clear watch history", "error", err)
		s.historyDegraded = true
	}
}

// Unlocked returns the persisted unlocked-server map. Implements the
// access gate's UnlockStore.
func (s *Store) Unlocked() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]bool, len(s.unlocks))
	for k, v := range s.unlocks {
		result[k] = v
	}
	return result, nil
}

// RecordUnlock merges one server into the unlocked map. Prior unlocks are
// never removed.
func (s *Store) RecordUnlock(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unlocks[name] = true

	if s.unlocksDegraded {
		return nil
	}
	if err := s.durable.SaveUnlock(name); err != nil {
		s.logger.Warn("failed to persist server unlock, continuing memory-only", "server", name, "error", err)
		s.unlocksDegraded = true
	}
	return nil
}

// Preferences returns the current preference document
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.prefs
}

// MergePreferences applies a field-level patch to the preference blob and
// persists the merged document. Unknown fields in the stored blob are
// preserved.
func (s *Store) MergePreferences(patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range patch {
		s.prefsRaw[k] = v
	}

	merged, err := json.Marshal(s.prefsRaw)
	if err != nil {
		s.logger.Warn("failed to encode preferences", "error", err)
		return
	}
	// Re-derive the typed view from the merged document
	prefs := s.prefs
	if err := json.Unmarshal(merged, &prefs); err == nil {
		s.prefs = prefs
	}

	if s.prefsDegraded {
		return
	}
	if err := s.durable.SaveBlob(preferencesKey, merged); err != nil {
		s.logger.Warn("failed to persist preferences, continuing memory-only", "error", err)
		s.prefsDegraded = true
	}
}

// Close releases the durable backend
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.durable == nil {
		return nil
	}
	return s.durable.Close()
}
