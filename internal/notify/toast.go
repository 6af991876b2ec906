package notify

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

// DefaultDisplay is how long the history toast stays visible after a change.
const DefaultDisplay = 3500 * time.Millisecond

// Toast is the transient history notification.
//
// It reacts to engine events but never holds the engine: the only state it owns is its visibility.
type Toast struct {
	// deliver is held from a visibility change until onChange returned,
	// so callbacks arrive in the order the changes happened.
	deliver sync.Mutex

	mu       sync.Mutex
	display  time.Duration
	onChange func(visible bool)

	visible bool
	timer   *time.Timer
	// generation invalidates timers that fired after being replaced.
	generation uint64
	closed     bool
}

// NewToast - creates a hidden toast. onChange is called whenever visibility flips,
// one call at a time. It may read Visible but must not call Notify or Dismiss.
func NewToast(display time.Duration, onChange func(visible bool)) *Toast {
	if display <= 0 {
		display = DefaultDisplay
	}

	if onChange == nil {
		onChange = func(bool) {}
	}

	return &Toast{
		display:  display,
		onChange: onChange,
	}
}

// Notify shows the toast after a history change and re-arms the auto-dismiss timer.
// At game start or after a restart there is nothing to show, so the toast is hidden instead.
func (that *Toast) Notify(ev game.Event) {
	that.deliver.Lock()
	defer that.deliver.Unlock()

	that.mu.Lock()

	if that.closed {
		that.mu.Unlock()
		return
	}

	that.stopLocked()

	if ev.HistoryLen <= 1 {
		changed := that.setLocked(false)
		that.mu.Unlock()
		that.fire(changed, false)
		return
	}

	generation := that.generation
	that.timer = time.AfterFunc(that.display, func() { that.expire(generation) })
	changed := that.setLocked(true)
	that.mu.Unlock()

	that.fire(changed, true)
}

// Dismiss hides the toast immediately, as the close button does.
func (that *Toast) Dismiss() {
	that.deliver.Lock()
	defer that.deliver.Unlock()

	that.mu.Lock()
	that.stopLocked()
	changed := that.setLocked(false)
	that.mu.Unlock()

	that.fire(changed, false)
}

func (that *Toast) Visible() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.visible
}

// Close releases the timer. Events received afterwards are ignored.
func (that *Toast) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopLocked()
	that.closed = true
}

func (that *Toast) expire(generation uint64) {
	that.deliver.Lock()
	defer that.deliver.Unlock()

	that.mu.Lock()

	if that.closed || generation != that.generation {
		that.mu.Unlock()
		return
	}

	that.timer = nil
	changed := that.setLocked(false)
	that.mu.Unlock()

	that.fire(changed, false)
}

func (that *Toast) stopLocked() {
	that.generation++

	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}

func (that *Toast) setLocked(visible bool) bool {
	if that.visible == visible {
		return false
	}

	that.visible = visible

	return true
}

func (that *Toast) fire(changed, visible bool) {
	if changed {
		that.onChange(visible)
	}
}
