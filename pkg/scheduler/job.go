package scheduler

import (
	"fmt"
	"math"
)

// Job is a unit of scheduled work.
type Job struct {
	// Name identifies the job in diagnostics.
	Name string

	// Rank orders main-stage jobs. Lower ranks run first; zero means
	// unranked, which sorts after every ranked job in insertion order.
	// Components use their creation id so parents precede children.
	Rank uint64

	// AllowRecurse lets the job re-queue itself while it is running.
	AllowRecurse bool

	// Run is the work.
	Run func()
}

// NewJob creates an unranked job.
func NewJob(name string, run func()) *Job {
	return &Job{Name: name, Run: run}
}

func (j *Job) String() string {
	if j.Name != "" {
		return j.Name
	}
	return fmt.Sprintf("job#%d", j.Rank)
}

func (j *Job) order() uint64 {
	if j.Rank == 0 {
		return math.MaxUint64
	}
	return j.Rank
}

// Stage selects when a job runs within a flush.
type Stage uint8

const (
	StagePre Stage = iota
	StageMain
	StagePost
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StagePre:
		return "pre"
	case StageMain:
		return "main"
	case StagePost:
		return "post"
	default:
		return "unknown"
	}
}
