package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

type recorder struct {
	mu      sync.Mutex
	changes []bool
}

func (that *recorder) record(visible bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.changes = append(that.changes, visible)
}

func (that *recorder) snapshot() []bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]bool(nil), that.changes...)
}

func played(historyLen int) game.Event {
	return game.Event{Kind: game.EventPlayed, CurrentMove: historyLen - 1, HistoryLen: historyLen}
}

func TestToast_ShowsAndExpires(t *testing.T) {
	// Given: a toast with a short display time
	rec := &recorder{}
	toast := NewToast(30*time.Millisecond, rec.record)
	defer toast.Close()

	// When: a move is played
	toast.Notify(played(2))

	// Then: it is visible and hides by itself
	require.True(t, toast.Visible())
	require.Eventually(t, func() bool { return !toast.Visible() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{true, false}, rec.snapshot())
}

func TestToast_NewMoveResetsTimer(t *testing.T) {
	rec := &recorder{}
	toast := NewToast(80*time.Millisecond, rec.record)
	defer toast.Close()

	// Given: a visible toast halfway through its display time
	toast.Notify(played(2))
	time.Sleep(50 * time.Millisecond)

	// When: another move arrives
	toast.Notify(played(3))
	time.Sleep(50 * time.Millisecond)

	// Then: the first timer did not hide it
	assert.True(t, toast.Visible())
	require.Eventually(t, func() bool { return !toast.Visible() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{true, false}, rec.snapshot())
}

func TestToast_HiddenAtGameStart(t *testing.T) {
	t.Run("Game start shows nothing", func(t *testing.T) {
		rec := &recorder{}
		toast := NewToast(time.Hour, rec.record)
		defer toast.Close()

		toast.Notify(game.Event{Kind: game.EventJumped, CurrentMove: 0, HistoryLen: 1})

		assert.False(t, toast.Visible())
		assert.Empty(t, rec.snapshot())
	})

	t.Run("Restart hides a visible toast", func(t *testing.T) {
		rec := &recorder{}
		toast := NewToast(time.Hour, rec.record)
		defer toast.Close()

		toast.Notify(played(4))
		toast.Notify(game.Event{Kind: game.EventRestarted, HistoryLen: 1})

		assert.False(t, toast.Visible())
		assert.Equal(t, []bool{true, false}, rec.snapshot())
	})
}

func TestToast_Dismiss(t *testing.T) {
	rec := &recorder{}
	toast := NewToast(40*time.Millisecond, rec.record)
	defer toast.Close()

	toast.Notify(played(2))
	toast.Dismiss()
	time.Sleep(80 * time.Millisecond)

	assert.False(t, toast.Visible())
	assert.Equal(t, []bool{true, false}, rec.snapshot())
}

func TestToast_CloseStopsTimer(t *testing.T) {
	// Given: a visible toast
	rec := &recorder{}
	toast := NewToast(20*time.Millisecond, rec.record)
	toast.Notify(played(2))

	// When: it is torn down before the timer fires
	toast.Close()
	time.Sleep(60 * time.Millisecond)
	toast.Notify(played(3))

	// Then: no further changes happen
	assert.Equal(t, []bool{true}, rec.snapshot())
}

func TestToast_DrivenByEngine(t *testing.T) {
	rec := &recorder{}
	toast := NewToast(time.Hour, rec.record)
	defer toast.Close()

	engine := game.New()
	unsubscribe := engine.Subscribe(toast.Notify)
	defer unsubscribe()

	_, err := engine.Play(4)
	require.NoError(t, err)
	assert.True(t, toast.Visible())

	require.NoError(t, engine.JumpTo(0))
	assert.True(t, toast.Visible())

	engine.Restart()
	assert.False(t, toast.Visible())
	assert.Equal(t, 1, engine.Len())
}

func TestNewToast_Defaults(t *testing.T) {
	toast := NewToast(0, nil)
	defer toast.Close()

	assert.Equal(t, DefaultDisplay, toast.display)

	toast.Notify(played(2))
	assert.True(t, toast.Visible())
}

func TestToast_ConcurrentChangesDeliveredInOrder(t *testing.T) {
	// Given: a toast whose callback compares each change with the toast state
	rec := &recorder{}
	var toast *Toast
	var mismatches int
	toast = NewToast(time.Millisecond, func(visible bool) {
		if toast.Visible() != visible {
			mismatches++
		}
		rec.record(visible)
	})
	defer toast.Close()

	// When: events, dismissals and expiring timers race
	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				toast.Notify(played(2 + i))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				toast.Dismiss()
			}
		}()
	}
	wg.Wait()
	toast.Dismiss()

	// Then: every callback matched the state at delivery, and shows and hides alternate
	changes := rec.snapshot()
	require.NotEmpty(t, changes)
	assert.Zero(t, mismatches)
	assert.True(t, changes[0])
	for i := 1; i < len(changes); i++ {
		require.NotEqual(t, changes[i-1], changes[i], "change %d repeats the previous one", i)
	}
	assert.False(t, changes[len(changes)-1])
	assert.False(t, toast.Visible())
}
