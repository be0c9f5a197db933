package jobs

import (
	"context"
	"time"

	"pricehive_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NotificationPurger deletes read notifications older than a cutoff.
type NotificationPurger interface {
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetentionJob periodically removes old read notifications.
type NotificationRetentionJob struct {
	purger        NotificationPurger
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	now           func() time.Time
}

func NewNotificationRetentionJob(purger NotificationPurger, logger *zap.Logger, cfg *config.Config) *NotificationRetentionJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &NotificationRetentionJob{
		purger:        purger,
		logger:        logger.Named("NotificationRetentionJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
		now:           time.Now,
	}
}

// SetupAndStart schedules and starts the job. An empty schedule or a non-positive
// retention disables it.
func (j *NotificationRetentionJob) SetupAndStart() error {
	spec := j.cfg.NotificationRetentionJobSchedule
	if spec == "" || j.cfg.NotificationRetentionDays <= 0 {
		j.logger.Warn("Notification retention disabled (NOTIFICATION_RETENTION_JOB_SCHEDULE or NOTIFICATION_RETENTION_DAYS unset).")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(spec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule notification retention job", zap.String("spec", spec), zap.Error(err))
		return err
	}

	j.logger.Info("Notification retention job scheduled",
		zap.String("spec", spec),
		zap.Int("retention_days", j.cfg.NotificationRetentionDays),
		zap.Any("jobID", jobID),
	)
	j.cronScheduler.Start()
	return nil
}

func (j *NotificationRetentionJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := j.now().UTC().AddDate(0, 0, -j.cfg.NotificationRetentionDays)
	deleted, err := j.purger.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("Notification retention run failed", zap.Error(err))
		return
	}
	j.logger.Info("Notification retention run completed", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
}

// Stop stops the scheduler, waiting up to ten seconds for a running purge.
func (j *NotificationRetentionJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Notification retention scheduler stopped.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Notification retention scheduler stop timed out.")
	}
}
