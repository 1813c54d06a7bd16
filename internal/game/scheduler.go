package game

import "time"

// CancelFunc stops a scheduled callback. Calling it more than once is harmless.
type CancelFunc func()

// Scheduler runs fn once after d. Callbacks run on their own goroutine and must
// take the session lock themselves.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// ClockScheduler schedules on the wall clock via time.AfterFunc.
type ClockScheduler struct{}

func (ClockScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func cancelAll(fns ...*CancelFunc) {
	for _, fn := range fns {
		if *fn != nil {
			(*fn)()
			*fn = nil
		}
	}
}
