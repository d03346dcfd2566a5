package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultHideDelay is how long the controls overlay stays visible in
// fullscreen after the last user activity
const DefaultHideDelay = 3 * time.Second

// Display abstracts the platform's native fullscreen control. Enter and
// Exit are requests; the authoritative state arrives through Subscribe,
// which also observes changes made outside the app (Esc, window chrome).
type Display interface {
	Enter() error
	Exit() error
	Subscribe(fn func(fullscreen bool)) (cancel func())
}

// Timer is the cancellable handle used for the controls hide delay
type Timer interface {
	Stop() bool
}

// Clock schedules the hide delay; real code uses the wall clock, tests
// inject a fake
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// LifecycleOptions tunes a controls lifecycle; zero values pick defaults
type LifecycleOptions struct {
	HideDelay time.Duration
	Clock     Clock
	// OnChange is invoked outside the lifecycle's lock after every
	// visible state change. It must not call back into the lifecycle.
	OnChange func(fullscreen, controlsVisible bool)
	Logger   *slog.Logger
}

// ControlsLifecycle owns the fullscreen flag and the auto-hiding controls
// overlay for a mounted player. The native change notification, not the
// request call, is the source of truth for the fullscreen flag.
type ControlsLifecycle struct {
	mu sync.Mutex

	display   Display
	clock     Clock
	hideDelay time.Duration
	onChange  func(fullscreen, controlsVisible bool)
	logger    *slog.Logger

	fullscreen      bool
	controlsVisible bool
	hideTimer       Timer
	unsubscribe     func()
	closed          bool
}

// NewControlsLifecycle creates a lifecycle bound to the given display.
// Controls start visible and the fullscreen flag starts false.
func NewControlsLifecycle(display Display, opts LifecycleOptions) *ControlsLifecycle {
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.Clock == nil {
		opts.Clock = wallClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := &ControlsLifecycle{
		display:         display,
		clock:           opts.Clock,
		hideDelay:       opts.HideDelay,
		onChange:        opts.OnChange,
		logger:          opts.Logger,
		controlsVisible: true,
	}
	l.unsubscribe = display.Subscribe(l.handleNativeChange)
	return l
}

// EnterFullscreen requests native fullscreen. State flips only once the
// display reports the change.
func (l *ControlsLifecycle) EnterFullscreen() error {
	return l.display.Enter()
}

// ExitFullscreen requests leaving native fullscreen
func (l *ControlsLifecycle) ExitFullscreen() error {
	return l.display.Exit()
}

// Toggle requests the opposite of the current fullscreen state
func (l *ControlsLifecycle) Toggle() error {
	l.mu.Lock()
	active := l.fullscreen
	l.mu.Unlock()

	if active {
		return l.display.Exit()
	}
	return l.display.Enter()
}

// handleNativeChange is the single writer of the fullscreen flag. Every
// transition, in either direction, restores the controls; entering
// fullscreen arms the hide timer.
func (l *ControlsLifecycle) handleNativeChange(active bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	l.fullscreen = active
	l.controlsVisible = true
	l.stopHideTimerLocked()
	if active {
		l.armHideTimerLocked()
	}
	l.logger.Debug("fullscreen changed", "active", active)
	l.notifyLocked()
}

// Activity reports user input (mouse move, key press). In fullscreen it
// restores the controls and restarts the hide delay; outside fullscreen
// the controls are always visible and nothing happens.
func (l *ControlsLifecycle) Activity() {
	l.mu.Lock()
	if l.closed || !l.fullscreen {
		l.mu.Unlock()
		return
	}

	l.controlsVisible = true
	l.stopHideTimerLocked()
	l.armHideTimerLocked()
	l.notifyLocked()
}

func (l *ControlsLifecycle) armHideTimerLocked() {
	l.hideTimer = l.clock.AfterFunc(l.hideDelay, l.hideTimerFired)
}

func (l *ControlsLifecycle) stopHideTimerLocked() {
	if l.hideTimer != nil {
		l.hideTimer.Stop()
		l.hideTimer = nil
	}
}

func (l *ControlsLifecycle) hideTimerFired() {
	l.mu.Lock()
	if l.closed || !l.fullscreen || !l.controlsVisible {
		l.mu.Unlock()
		return
	}

	l.controlsVisible = false
	l.hideTimer = nil
	l.notifyLocked()
}

// notifyLocked snapshots state, releases the lock, and fires the change
// callback. Callers must hold the lock and must return right after.
func (l *ControlsLifecycle) notifyLocked() {
	fullscreen, visible := l.fullscreen, l.controlsVisible
	cb := l.onChange
	l.mu.Unlock()

	if cb != nil {
		cb(fullscreen, visible)
	}
}

// IsFullscreen reports the last state the display announced
func (l *ControlsLifecycle) IsFullscreen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fullscreen
}

// ControlsVisible reports whether the controls overlay is shown
func (l *ControlsLifecycle) ControlsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.controlsVisible
}

// Close tears the lifecycle down: the subscription and hide timer are
// released and, if still in fullscreen, the display is forced back out
// exactly once. Close is idempotent.
func (l *ControlsLifecycle) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.stopHideTimerLocked()
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	wasFullscreen := l.fullscreen
	l.fullscreen = false
	l.controlsVisible = true
	l.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if wasFullscreen {
		if err := l.display.Exit(); err != nil {
			l.logger.Warn("failed to exit fullscreen on teardown", "error", err)
		}
	}
}
