package watch

import "sync"

// termDisplay implements session.Display for the terminal player pane.
// There is no async platform layer: a request takes effect immediately
// and the change notification fires synchronously, which still keeps the
// notification as the single source of truth for the session lifecycle.
type termDisplay struct {
	mu         sync.Mutex
	fullscreen bool
	subscriber func(bool)
}

func newTermDisplay() *termDisplay {
	return &termDisplay{}
}

func (d *termDisplay) Enter() error {
	d.setFullscreen(true)
	return nil
}

func (d *termDisplay) Exit() error {
	d.setFullscreen(false)
	return nil
}

func (d *termDisplay) setFullscreen(active bool) {
	d.mu.Lock()
	changed := d.fullscreen != active
	d.fullscreen = active
	fn := d.subscriber
	d.mu.Unlock()

	if changed && fn != nil {
		fn(active)
	}
}

func (d *termDisplay) Subscribe(fn func(fullscreen bool)) (cancel func()) {
	d.mu.Lock()
	d.subscriber = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		d.subscriber = nil
		d.mu.Unlock()
	}
}
