package timer

import (
	"fmt"
	"sync"
	"time"
)

// Display texts for a timer that is not counting down.
const (
	TextOff  = "No Timer"
	TextDone = "Timer Done"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a pending AfterFunc.
type Stopper interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// SleepTimer stops playback after a chosen duration.
//
// The timer is in one of three states: off, running, or done. Set moves it
// to running, expiry moves it to done and calls the expiry callback exactly
// once, Cancel moves it back to off. A SleepTimer is safe for concurrent use.
type SleepTimer struct {
	clock    Clock
	onExpire func(countdown uint64)

	mu       sync.Mutex
	deadline time.Time
	pending  Stopper
	gen      uint64
	done     bool
}

// New creates a SleepTimer that calls onExpire with the countdown's id when
// it reaches zero. onExpire runs on its own goroutine and may be nil.
func New(onExpire func(countdown uint64)) *SleepTimer {
	return NewWithClock(realClock{}, onExpire)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(clock Clock, onExpire func(countdown uint64)) *SleepTimer {
	return &SleepTimer{clock: clock, onExpire: onExpire}
}

// Set starts a countdown of d, replacing any running one. A d of zero or
// less is the same as Cancel.
func (t *SleepTimer) Set(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.done = false
	if d <= 0 {
		return
	}

	t.gen++
	gen := t.gen
	t.deadline = t.clock.Now().Add(d)
	t.pending = t.clock.AfterFunc(d, func() { t.fire(gen) })
}

// SetMinutes is Set with a whole number of minutes.
func (t *SleepTimer) SetMinutes(minutes int) {
	t.Set(time.Duration(minutes) * time.Minute)
}

// Cancel stops the countdown and clears a finished state.
func (t *SleepTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.done = false
}

func (t *SleepTimer) stopLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
	t.deadline = time.Time{}
}

func (t *SleepTimer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		// Replaced or cancelled after the callback was scheduled.
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.deadline = time.Time{}
	t.done = true
	cb := t.onExpire
	t.mu.Unlock()

	if cb != nil {
		cb(gen)
	}
}

// Finished reports whether countdown ran to completion and has not since
// been replaced or cancelled.
func (t *SleepTimer) Finished(countdown uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done && t.gen == countdown
}

// Running reports whether a countdown is in progress.
func (t *SleepTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.deadline.IsZero()
}

// Done reports whether the last countdown ran to completion.
func (t *SleepTimer) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Remaining returns the time left, or zero when not running.
func (t *SleepTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked()
}

func (t *SleepTimer) remainingLocked() time.Duration {
	if t.deadline.IsZero() {
		return 0
	}
	left := t.deadline.Sub(t.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Display renders the timer for the status line: "No Timer", the time left
// as "mm:ss", or "Timer Done".
func (t *SleepTimer) Display() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.done:
		return TextDone
	case t.deadline.IsZero():
		return TextOff
	}
	return FormatRemaining(t.remainingLocked())
}

// FormatRemaining formats d as "mm:ss", dropping partial seconds. Minutes
// are not capped at 59.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
