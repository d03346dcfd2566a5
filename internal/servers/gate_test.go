package servers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeUnlockStore struct {
	unlocked map[string]bool
	readErr  error
	writeErr error
	recorded []string
}

func (f *fakeUnlockStore) Unlocked() (map[string]bool, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.unlocked, nil
}

func (f *fakeUnlockStore) RecordUnlock(name string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.unlocked == nil {
		f.unlocked = map[string]bool{}
	}
	f.unlocked[name] = true
	f.recorded = append(f.recorded, name)
	return nil
}

func lockedServer(password string) ServerDescriptor {
	return ServerDescriptor{
		Name:     "Vault",
		IsLocked: true,
		Password: Obfuscate(password),
	}
}

func TestRequiresUnlock(t *testing.T) {
	t.Run("open server never requires unlock", func(t *testing.T) {
		g := NewGate(&fakeUnlockStore{}, nil)
		assert.False(t, g.RequiresUnlock(ServerDescriptor{Name: "Open"}))
	})

	t.Run("locked server requires unlock until recorded", func(t *testing.T) {
		store := &fakeUnlockStore{}
		g := NewGate(store, nil)
		srv := lockedServer("sesame")

		assert.True(t, g.RequiresUnlock(srv))
		g.RecordUnlock(srv)
		assert.False(t, g.RequiresUnlock(srv))
	})

	t.Run("store read failure treats server as locked", func(t *testing.T) {
		store := &fakeUnlockStore{readErr: errors.New("disk gone")}
		g := NewGate(store, nil)
		assert.True(t, g.RequiresUnlock(lockedServer("sesame")))
	})
}

func TestCheckPassword(t *testing.T) {
	g := NewGate(&fakeUnlockStore{}, nil)
	srv := lockedServer("sesame")

	assert.True(t, g.CheckPassword(srv, "sesame"))
	assert.False(t, g.CheckPassword(srv, "Sesame"))
	assert.False(t, g.CheckPassword(srv, ""))
	assert.False(t, g.CheckPassword(srv, "sesame "))

	t.Run("open server accepts anything", func(t *testing.T) {
		assert.True(t, g.CheckPassword(ServerDescriptor{Name: "Open"}, "whatever"))
	})

	t.Run("corrupt stored password never matches", func(t *testing.T) {
		corrupt := ServerDescriptor{Name: "Broken", IsLocked: true, Password: "not base64!!!"}
		assert.False(t, g.CheckPassword(corrupt, ""))
		assert.False(t, g.CheckPassword(corrupt, "not base64!!!"))
	})
}

func TestRecordUnlockBestEffort(t *testing.T) {
	store := &fakeUnlockStore{writeErr: errors.New("disk full")}
	g := NewGate(store, nil)

	// Must not panic or surface the failure; the in-memory store layer
	// keeps the unlock for the running session
	g.RecordUnlock(lockedServer("sesame"))
	assert.Empty(t, store.recorded)
}
