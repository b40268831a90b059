package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron runs registered jobs on cron expressions. A panic inside one job is
// recovered so it never kills the scheduler.
type Cron struct {
	inner *cron.Cron
}

func NewCron(loc *time.Location) *Cron {
	if loc == nil {
		loc = time.Local
	}
	return &Cron{inner: cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)}
}

func (cr *Cron) Start() { cr.inner.Start() }

// Stop waits for in-flight jobs to finish.
func (cr *Cron) Stop() { <-cr.inner.Stop().Done() }

// Add registers job under a cron expression.
func (cr *Cron) Add(expr string, job Job) (cron.EntryID, error) {
	return cr.inner.AddFunc(expr, func() { job.Run(context.Background()) })
}

func (cr *Cron) Entries() []cron.Entry { return cr.inner.Entries() }
