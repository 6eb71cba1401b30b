package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a background maintenance task (dataset reaping, cache cleanup).
// Run receives the scheduler's context, bounded by the per-run timeout.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CronScheduler drives maintenance jobs on 5-field cron specs. A run that is
// still going when its next tick fires is skipped, never stacked, and each
// run is cut off at runTimeout so a wedged backend cannot pin a job forever.
type CronScheduler struct {
	cron       *cron.Cron
	entries    map[string]cron.EntryID
	runTimeout time.Duration
	ctx        context.Context
}

func NewCronScheduler(runTimeout time.Duration) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:       cron.New(cron.WithParser(parser)),
		entries:    make(map[string]cron.EntryID),
		runTimeout: runTimeout,
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	entryID, err := c.cron.AddFunc(spec, c.wrap(job))
	if err != nil {
		logutil.GetLogger(context.Background()).Error("bad cron spec for job",
			zap.String("cron_job", job.Name()), zap.String("cron_spec", spec), zap.Error(err))
		return err
	}
	c.entries[job.Name()] = entryID
	logutil.GetLogger(context.Background()).Info("maintenance job scheduled",
		zap.String("cron_job", job.Name()), zap.String("cron_spec", spec))
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	done := c.cron.Stop()
	<-done.Done()
}

func (c *CronScheduler) wrap(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			logutil.GetLogger(context.Background()).Info("maintenance job still running, tick skipped",
				zap.String("cron_job", job.Name()))
			return
		}
		defer running.Store(false)
		c.runOnce(job)
	}
}

func (c *CronScheduler) runOnce(job Job) {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}
	logger := logutil.GetLogger(ctx).With(zap.String("cron_job", job.Name()))
	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("maintenance job failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return
	}
	logger.Info("maintenance job done", zap.Duration("elapsed", elapsed))
}
