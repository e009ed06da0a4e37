package game

import (
	"sync"
	"time"
)

// roomTimers gives each room two exclusive slots: a countdown slot (the 1s
// ticker that drives TimeLeft) and a delay slot (one-shot callbacks for
// round-end pauses, early-end debounce and reflex spawn chains). Starting a
// slot cancels whatever was running in it. Generation counters invalidate
// callbacks that were already in flight when a cancel happened.
type roomTimers struct {
	mu       sync.Mutex
	tickGen  uint64
	delayGen uint64
	delay    *time.Timer
}

// startCountdown runs fn once per second on a fresh goroutine until the
// slot is cancelled. fn must lock the room itself; it returns false to stop
// the ticker (expiry or phase change).
func (t *roomTimers) startCountdown(fn func(gen uint64) bool) uint64 {
	t.mu.Lock()
	t.tickGen++
	gen := t.tickGen
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if !fn(gen) {
				return
			}
		}
	}()
	return gen
}

// countdownAlive reports whether gen is still the current countdown slot.
// Callers hold the room lock, so a true answer stays valid for the callback.
func (t *roomTimers) countdownAlive(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.tickGen
}

// scheduleAfter arms the delay slot, replacing any pending one-shot.
func (t *roomTimers) scheduleAfter(d time.Duration, fn func(gen uint64)) uint64 {
	t.mu.Lock()
	if t.delay != nil {
		t.delay.Stop()
	}
	t.delayGen++
	gen := t.delayGen
	t.delay = time.AfterFunc(d, func() { fn(gen) })
	t.mu.Unlock()
	return gen
}

func (t *roomTimers) delayAlive(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.delayGen
}

// cancelCountdown stops only the ticker slot.
func (t *roomTimers) cancelCountdown() {
	t.mu.Lock()
	t.tickGen++
	t.mu.Unlock()
}

// cancelAll invalidates both slots. Called on every phase exit and on room
// teardown.
func (t *roomTimers) cancelAll() {
	t.mu.Lock()
	t.tickGen++
	t.delayGen++
	if t.delay != nil {
		t.delay.Stop()
		t.delay = nil
	}
	t.mu.Unlock()
}
