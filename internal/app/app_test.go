package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRunOnLoopExecutesOnReceivingGoroutine verifies the funneling
// mechanism IPC-handler methods rely on: runOnLoop blocks the calling
// goroutine until whatever goroutine is draining a.calls has run fn, so
// a Handler method never touches main-loop-owned state directly.
func TestRunOnLoopExecutesOnReceivingGoroutine(t *testing.T) {
	a := &App{calls: make(chan ipcCall), stopped: make(chan struct{})}

	loopGoroutine := make(chan struct{})
	var ranOnLoop bool

	go func() {
		defer close(loopGoroutine)
		select {
		case c := <-a.calls:
			ranOnLoop = true
			c.fn()
			close(c.done)
		case <-time.After(time.Second):
		}
	}()

	done := make(chan struct{})
	go func() {
		a.runOnLoop(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runOnLoop never returned")
	}
	<-loopGoroutine
	require.True(t, ranOnLoop, "fn should have run on the receiving goroutine, not the caller")
}

// TestRunOnLoopUnblocksOnStop verifies that once the main loop has
// exited (stopped is closed), a straggling connection goroutine's
// runOnLoop call returns instead of blocking forever on a.calls — this
// is what lets Server.Close's wg.Wait() complete during shutdown.
func TestRunOnLoopUnblocksOnStop(t *testing.T) {
	a := &App{calls: make(chan ipcCall), stopped: make(chan struct{})}
	close(a.stopped)

	var fnRan bool
	done := make(chan struct{})
	go func() {
		a.runOnLoop(func() { fnRan = true })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runOnLoop did not unblock after stop")
	}
	require.False(t, fnRan, "fn must not run after stop")
}
