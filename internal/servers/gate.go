package servers

import (
	"crypto/subtle"
	"log/slog"
)

// UnlockStore persists which locked servers the user has opened. The map
// only ever grows: recording an unlock never removes prior entries.
type UnlockStore interface {
	Unlocked() (map[string]bool, error)
	RecordUnlock(name string) error
}

// Gate guards locked servers behind a per-server password. It is a
// convenience gate, not an authentication system: passwords are compared
// exactly, with no attempt limit or backoff.
type Gate struct {
	store  UnlockStore
	logger *slog.Logger
}

// NewGate creates a gate backed by the given unlock store
func NewGate(store UnlockStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, logger: logger}
}

// RequiresUnlock reports whether selecting the server must be intercepted
// by a password challenge
func (g *Gate) RequiresUnlock(s ServerDescriptor) bool {
	if !s.IsLocked {
		return false
	}

	unlocked, err := g.store.Unlocked()
	if err != nil {
		g.logger.Warn("failed to read unlock state, treating server as locked", "server", s.Name, "error", err)
		return true
	}

	return !unlocked[s.Name]
}

// CheckPassword compares the candidate against the server's decoded
// password. Case-sensitive exact match.
func (g *Gate) CheckPassword(s ServerDescriptor, candidate string) bool {
	if !s.IsLocked {
		return true
	}

	secret := Deobfuscate(s.Password)
	if secret == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1
}

// RecordUnlock persists the unlock for the server. Best-effort: a failing
// store is logged and the unlock still holds for the running session
// because the store degrades to memory.
func (g *Gate) RecordUnlock(s ServerDescriptor) {
	if err := g.store.RecordUnlock(s.Name); err != nil {
		g.logger.Warn("failed to persist server unlock", "server", s.Name, "error", err)
	}
}
