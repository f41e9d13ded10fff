package application

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweeper promotes started matches to waiting_result
type Sweeper interface {
	SweepExpiredActive(ctx context.Context, now time.Time) (int, error)
}

// SweepWorker runs the expiry sweep on a cron schedule.
// Runs never overlap: a tick that fires while the previous run is busy is skipped.
type SweepWorker struct {
	sweeper  Sweeper
	schedule string
	now      func() time.Time
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(sweeper Sweeper, schedule string) *SweepWorker {
	return &SweepWorker{
		sweeper:  sweeper,
		schedule: schedule,
		now:      time.Now,
	}
}

// RunOnce performs a single sweep and returns the number of promoted predictions
func (w *SweepWorker) RunOnce(ctx context.Context) (int, error) {
	start := w.now()
	promoted, err := w.sweeper.SweepExpiredActive(ctx, start)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired predictions: %w", err)
	}

	log.WithFields(log.Fields{
		"promoted": promoted,
		"duration": time.Since(start),
	}).Debug("Sweep run finished")
	return promoted, nil
}

// Start schedules the sweep and returns a function that stops it.
// A first sweep runs immediately so restarts do not wait a full period.
func (w *SweepWorker) Start(ctx context.Context) (func(), error) {
	job := cron.NewChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	).Then(cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.RunOnce(ctx); err != nil {
			log.WithError(err).Error("Scheduled sweep failed")
		}
	}))

	c := cron.New()
	if _, err := c.AddJob(w.schedule, job); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", w.schedule, err)
	}

	initial := make(chan struct{})
	go func() {
		defer close(initial)
		job.Run()
	}()
	c.Start()
	log.WithField("schedule", w.schedule).Info("Sweep worker started")

	// Stop returns once no sweep is running, the immediate one included
	return func() {
		<-c.Stop().Done()
		<-initial
		log.Info("Sweep worker stopped")
	}, nil
}
