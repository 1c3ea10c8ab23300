package conversation

import "time"

// Timer is a pending reply that can still be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. It stands in for the assistant's
// "thinking time" before a reply lands.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TimerScheduler schedules on the runtime timer via time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
