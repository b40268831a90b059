package scheduler

import "context"

// Job is one schedulable unit of work.
type Job interface{ Run(ctx context.Context) }

// FuncJob adapts a plain function to Job.
type FuncJob func(ctx context.Context)

func (f FuncJob) Run(ctx context.Context) { f(ctx) }
