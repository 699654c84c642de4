// Package scheduler runs the periodic housekeeping: invitation expiry and cache purge.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one housekeeping task; Run reports how many rows it touched.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Sweeper is the part of the store the invitation job needs.
type Sweeper interface {
	ExpirePendingInvitations(ctx context.Context) (int64, error)
}

// InvitationJob marks overdue PENDING invitations EXPIRED.
func InvitationJob(s Sweeper) Job {
	return Job{Name: "invitation-expiry", Run: s.ExpirePendingInvitations}
}

// RunOnce runs every job in order; a failing job does not stop the others.
func RunOnce(ctx context.Context, jobs ...Job) {
	for _, j := range jobs {
		n, err := j.Run(ctx)
		if err != nil {
			log.Printf("[SCHEDULER] %s error: %v", j.Name, err)
			continue
		}
		if n > 0 {
			log.Printf("[SCHEDULER] %s: %d row(s)", j.Name, n)
		}
	}
}

// Start schedules RunOnce; overlapping runs are skipped.
// The caller stops the returned cron on shutdown.
func Start(schedule string, jobs ...Job) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		RunOnce(ctx, jobs...)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SCHEDULER] started schedule=%q jobs=%d", schedule, len(jobs))
	c.Start()
	return c, nil
}
