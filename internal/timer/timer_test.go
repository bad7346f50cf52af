package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock fires scheduled functions synchronously from Advance.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	was := !ft.stopped
	ft.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTimer{at: c.now.Add(d), f: f}
	c.pending = append(c.pending, ft)
	return ft
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	rest := c.pending[:0]
	for _, ft := range c.pending {
		if !ft.stopped && !ft.at.After(c.now) {
			due = append(due, ft)
			continue
		}
		rest = append(rest, ft)
	}
	c.pending = rest
	c.mu.Unlock()

	for _, ft := range due {
		ft.stopped = true
		ft.f()
	}
}

func TestSleepTimer_Display(t *testing.T) {
	clock := newFakeClock()
	var fired int
	st := NewWithClock(clock, func(uint64) { fired++ })

	assert.Equal(t, TextOff, st.Display())
	assert.False(t, st.Running())

	st.SetMinutes(15)
	assert.True(t, st.Running())
	assert.Equal(t, "15:00", st.Display())

	clock.Advance(90*time.Second + 500*time.Millisecond)
	assert.Equal(t, "13:29", st.Display(), "partial seconds are dropped")
	assert.Equal(t, 13*time.Minute+29*time.Second+500*time.Millisecond, st.Remaining())

	clock.Advance(14 * time.Minute)
	assert.Equal(t, TextDone, st.Display())
	assert.True(t, st.Done())
	assert.False(t, st.Running())
	assert.Zero(t, st.Remaining())
	assert.Equal(t, 1, fired)

	clock.Advance(time.Hour)
	assert.Equal(t, 1, fired, "expiry fires once")
}

func TestSleepTimer_Cancel(t *testing.T) {
	clock := newFakeClock()
	var fired int
	st := NewWithClock(clock, func(uint64) { fired++ })

	st.SetMinutes(1)
	st.Cancel()
	clock.Advance(2 * time.Minute)

	assert.Zero(t, fired)
	assert.Equal(t, TextOff, st.Display())
}

func TestSleepTimer_SetReplaces(t *testing.T) {
	clock := newFakeClock()
	var fired int
	st := NewWithClock(clock, func(uint64) { fired++ })

	st.SetMinutes(1)
	clock.Advance(30 * time.Second)
	st.SetMinutes(30)
	clock.Advance(time.Minute)

	assert.Zero(t, fired, "replaced countdown must not fire")
	assert.Equal(t, "29:00", st.Display())
}

func TestSleepTimer_Finished(t *testing.T) {
	clock := newFakeClock()
	var expired []uint64
	st := NewWithClock(clock, func(countdown uint64) { expired = append(expired, countdown) })

	st.SetMinutes(1)
	clock.Advance(time.Minute)
	require.Len(t, expired, 1)
	first := expired[0]
	assert.True(t, st.Finished(first))

	// A new countdown started before the callback acted supersedes it.
	st.SetMinutes(10)
	assert.False(t, st.Finished(first))

	st.Cancel()
	assert.False(t, st.Finished(first))

	st.SetMinutes(2)
	clock.Advance(2 * time.Minute)
	require.Len(t, expired, 2)
	assert.NotEqual(t, first, expired[1])
	assert.True(t, st.Finished(expired[1]))
	assert.False(t, st.Finished(first))
}

func TestSleepTimer_ZeroDisables(t *testing.T) {
	clock := newFakeClock()
	st := NewWithClock(clock, nil)

	st.SetMinutes(5)
	clock.Advance(5 * time.Minute)
	require.True(t, st.Done())

	st.Set(0)
	assert.Equal(t, TextOff, st.Display())
	assert.False(t, st.Done())
}

func TestSleepTimer_RealClock(t *testing.T) {
	var fired atomic.Int32
	done := make(chan struct{})
	st := New(func(uint64) {
		fired.Add(1)
		close(done)
	})

	st.Set(20 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, TextDone, st.Display())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{time.Second, "00:01"},
		{59*time.Second + 999*time.Millisecond, "00:59"},
		{60 * time.Minute, "60:00"},
		{90*time.Minute + 5*time.Second, "90:05"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(tt.in))
		})
	}
}
