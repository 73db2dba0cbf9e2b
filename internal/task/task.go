package task

import "context"

// Job is a unit of recurring background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run executes the job once. It should return promptly when ctx is
	// cancelled.
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (f JobFunc) Name() string { return f.JobName }

// Run implements Job.
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }
