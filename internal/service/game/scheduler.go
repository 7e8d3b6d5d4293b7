package game

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The controller and debouncer take one so
// tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

// Timings holds the delays of the drop cycle.
type Timings struct {
	AnimationDelay time.Duration
	DebounceWindow time.Duration
	MessageTimeout time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		AnimationDelay: 600 * time.Millisecond,
		DebounceWindow: 300 * time.Millisecond,
		MessageTimeout: 2 * time.Second,
	}
}
