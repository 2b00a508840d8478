package timeline

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts the host's animation-frame callback and one-shot timers so
// the advance logic is host-agnostic and testable with a manual clock.
type Clock interface {
	// Now reports the clock's current wall time.
	Now() time.Time
	// Schedule arranges for fn to run on the next frame. The returned
	// function cancels the callback if it has not run yet.
	Schedule(fn func()) (cancel func())
	// AfterFunc arranges for fn to run once after d. The returned function
	// cancels the timer if it has not fired yet.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// DefaultFrameInterval approximates a 60 FPS host frame callback.
const DefaultFrameInterval = 16667 * time.Microsecond

// FrameClock is the production Clock: real time, with frame callbacks
// delivered by a fixed-interval timer.
type FrameClock struct {
	interval time.Duration
}

// NewFrameClock creates a clock firing frame callbacks every interval.
// A non-positive interval falls back to DefaultFrameInterval.
func NewFrameClock(interval time.Duration) *FrameClock {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &FrameClock{interval: interval}
}

// Now implements Clock.
func (fc *FrameClock) Now() time.Time { return time.Now() }

// Schedule implements Clock.
func (fc *FrameClock) Schedule(fn func()) (cancel func()) {
	t := time.AfterFunc(fc.interval, fn)
	return func() { t.Stop() }
}

// AfterFunc implements Clock.
func (fc *FrameClock) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualClock is a deterministic Clock driven by explicit Advance calls.
// Tests and the headless fast-playback mode use it to pump frames without
// waiting on real time.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	frames map[int]func()
	timers map[int]manualTimer
}

type manualTimer struct {
	at time.Time
	fn func()
}

// NewManualClock creates a manual clock at an arbitrary fixed origin.
func NewManualClock() *ManualClock {
	return &ManualClock{
		now:    time.Unix(0, 0),
		frames: make(map[int]func()),
		timers: make(map[int]manualTimer),
	}
}

// Now implements Clock.
func (mc *ManualClock) Now() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.now
}

// Schedule implements Clock. The callback fires on the next Advance.
func (mc *ManualClock) Schedule(fn func()) (cancel func()) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	id := mc.seq
	mc.seq++
	mc.frames[id] = fn
	return func() {
		mc.mu.Lock()
		defer mc.mu.Unlock()
		delete(mc.frames, id)
	}
}

// AfterFunc implements Clock. The callback fires on the first Advance that
// moves the clock to or past now+d.
func (mc *ManualClock) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	id := mc.seq
	mc.seq++
	mc.timers[id] = manualTimer{at: mc.now.Add(d), fn: fn}
	return func() {
		mc.mu.Lock()
		defer mc.mu.Unlock()
		delete(mc.timers, id)
	}
}

// Advance moves the clock forward by d, then delivers one round of frame
// callbacks followed by every timer that came due. Callbacks registered
// during delivery wait for the next Advance, so one call simulates exactly
// one host animation frame.
func (mc *ManualClock) Advance(d time.Duration) {
	mc.mu.Lock()
	mc.now = mc.now.Add(d)

	frames := make([]func(), 0, len(mc.frames))
	frameIDs := make([]int, 0, len(mc.frames))
	for id := range mc.frames {
		frameIDs = append(frameIDs, id)
	}
	sort.Ints(frameIDs)
	for _, id := range frameIDs {
		frames = append(frames, mc.frames[id])
		delete(mc.frames, id)
	}

	var due []manualTimer
	for id, tm := range mc.timers {
		if !tm.at.After(mc.now) {
			due = append(due, tm)
			delete(mc.timers, id)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	mc.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
	for _, tm := range due {
		tm.fn()
	}
}

// PendingFrames reports how many frame callbacks await the next Advance.
func (mc *ManualClock) PendingFrames() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.frames)
}
