package lightbox

import (
	"sort"
	"time"
)

// Scheduler is a timer queue advanced by the UI loop. Callbacks run inside
// Advance, on the caller's goroutine, so they never race with the
// controller.
type Scheduler struct {
	now    time.Time
	seq    uint64
	timers []*Timer
}

// Timer is a pending callback of a Scheduler
type Timer struct {
	s   *Scheduler
	at  time.Time
	seq uint64
	fn  func()
}

// NewScheduler creates a scheduler whose clock starts at now
func NewScheduler(now time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Now returns the time of the last Advance
func (s *Scheduler) Now() time.Time {
	return s.now
}

// AfterFunc schedules fn to run once d has elapsed on the scheduler clock.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{s: s, at: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of timers not yet fired or stopped
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// Advance moves the clock to now and runs every timer due by then, in due
// order. Timers scheduled by a callback run in the same call if they are
// already due. It returns the number of callbacks run.
func (s *Scheduler) Advance(now time.Time) int {
	if now.After(s.now) {
		s.now = now
	}

	fired := 0
	for {
		t := s.nextDue()
		if t == nil {
			return fired
		}
		s.remove(t)
		t.fn()
		fired++
	}
}

func (s *Scheduler) nextDue() *Timer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		a, b := s.timers[i], s.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	if t := s.timers[0]; !t.at.After(s.now) {
		return t
	}
	return nil
}

func (s *Scheduler) remove(t *Timer) bool {
	for i, cur := range s.timers {
		if cur == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Stop cancels the timer. It returns false if the timer already fired or
// was stopped.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	return t.s.remove(t)
}

// Fire runs a pending timer immediately instead of waiting for its due
// time. It returns false if the timer already fired or was stopped.
func (t *Timer) Fire() bool {
	if t == nil || !t.s.remove(t) {
		return false
	}
	t.fn()
	return true
}
