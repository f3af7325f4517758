package session

import (
	"sync"
	"time"
)

// Handle cancels a recurring callback. Stop is idempotent, never blocks and
// may be called from inside the callback itself.
type Handle interface {
	Stop()
}

// Scheduler arms recurring callbacks.
type Scheduler interface {
	Every(d time.Duration, fn func()) Handle
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// TickerScheduler runs each callback on its own goroutine driven by a
// time.Ticker. The goroutine exits once the handle is stopped.
type TickerScheduler struct{}

// Every calls fn every d until the returned handle is stopped.
func (TickerScheduler) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return h
}

type tickerHandle struct {
	done chan struct{}
	once sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.done) })
}
