package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/celestiaorg/quill/internal/logger"
)

// SchedulerOptions configures the in-process cron loop
type SchedulerOptions struct {
	ScanSchedule      string
	ReconcileEnabled  bool
	ReconcileSchedule string
}

// cronLogger routes cron's own messages to the service logger
type cronLogger struct{}

func (cronLogger) Printf(format string, args ...interface{}) {
	logger.Infof("cron: "+format, args...)
}

// Scheduler periodically runs the due scan and, when enabled, the reconciler
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler validates the schedules and registers the entries
func NewScheduler(ctx context.Context, opts SchedulerOptions, scanner *Scanner, reconciler *Reconciler) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	cronLog := cron.PrintfLogger(cronLogger{})
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	_, err := c.AddFunc(opts.ScanSchedule, func() {
		results, err := scanner.Scan(ctx, time.Now())
		if err != nil {
			logger.Errorf("Scheduled scan failed: %v", err)
			return
		}
		logger.Debugf("Scheduled scan handled %d items", len(results))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", opts.ScanSchedule, err)
	}

	if opts.ReconcileEnabled {
		if reconciler == nil {
			return nil, fmt.Errorf("reconcile is enabled without a reconciler")
		}
		_, err = c.AddFunc(opts.ReconcileSchedule, func() {
			if _, err := reconciler.Sweep(ctx, time.Now()); err != nil {
				logger.Errorf("Scheduled reconcile failed: %v", err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid reconcile schedule %q: %w", opts.ReconcileSchedule, err)
		}
	}

	return &Scheduler{cron: c}, nil
}

// Entries returns the number of registered schedules
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// LaunchScheduler runs the scheduler until ctx is done, then waits for the
// running entries to return
func LaunchScheduler(ctx context.Context, wg *sync.WaitGroup, s *Scheduler) {
	defer wg.Done()

	logger.Info("Scheduler started")
	s.cron.Start()

	<-ctx.Done()
	logger.Info("Scheduler received shutdown signal, stopping...")
	<-s.cron.Stop().Done()
}
