package cron

import (
	"context"
	"fmt"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/tracing"
)

type CronManager struct {
	cfg          *config.Config
	log          logger.Logger
	repositories *repository.Repositories
	cron         *cronv3.Cron
	jobIDs       map[string]cronv3.EntryID
}

func NewCronManager(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *CronManager {
	return &CronManager{
		cfg:          cfg,
		log:          log,
		repositories: repos,
		jobIDs:       make(map[string]cronv3.EntryID),
	}
}

// Start initializes and starts the cron scheduler.
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager, waiting for running jobs.
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	if schedule := cm.cfg.CronConfig.HeartbeatSchedule; schedule != "" {
		id, err := c.AddFunc(schedule, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Info("Cron heartbeat")
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
	}

	if schedule := cm.cfg.CronConfig.ReconcilePendingSchedule; schedule != "" {
		id, err := c.AddFunc(schedule, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.reconcileStalePending()
		})
		if err != nil {
			cm.log.Fatalf("Could not add pending reconciliation cron job: %v", err)
		}
		cm.jobIDs["reconcile_pending"] = id
		cm.log.Infof("Registered pending reconciliation job with schedule: %s", schedule)
	}
}

// reconcileStalePending fails ledger rows that have sat in pending past
// the configured age. A row can only get stuck that way if the process
// died between dispatch and finalize, so the real outcome is unknown.
func (cm *CronManager) reconcileStalePending() {
	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.reconcileStalePending")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	staleAge := time.Duration(cm.cfg.CronConfig.StalePendingMinutes) * time.Minute
	cutoff := time.Now().UTC().Add(-staleAge)
	message := fmt.Sprintf("Send outcome unknown: still pending after %d minutes", cm.cfg.CronConfig.StalePendingMinutes)

	count, err := cm.repositories.EmailRepository.FailStalePending(ctx, cutoff, message)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to reconcile stale pending emails: %v", err)
		return
	}
	if count > 0 {
		cm.log.Infof("Marked %d stale pending emails as failed", count)
	}
}
