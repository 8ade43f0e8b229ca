package scheduler

import "time"

// FlushStats summarizes one flush.
type FlushStats struct {
	Jobs     int
	Failed   int
	Duration time.Duration
}

// Observer receives flush notifications. Implementations must not enqueue
// jobs from these callbacks.
type Observer interface {
	FlushStarted()
	FlushFinished(stats FlushStats)
	JobFailed(job *Job, err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) FlushStarted() {}

func (NopObserver) FlushFinished(FlushStats) {}

func (NopObserver) JobFailed(*Job, error) {}
