package queue

import "errors"

var (
	// ErrJobNotFound is returned when a job identifier matches nothing.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobActive is returned when an operation needs a job no worker owns.
	ErrJobActive = errors.New("job is being processed")
	// ErrQueueFull is returned when the unfinished job count has reached the
	// admission limit.
	ErrQueueFull = errors.New("queue is at capacity")
)
