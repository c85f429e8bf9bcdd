package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

var tagsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "todo_tracker_tags_pruned_total",
	Help: "Orphan tags removed by the pruning job",
})

// Job is a unit of background work run by the scheduler.
type Job func(ctx context.Context) error

// SchedulerService wraps cron-based maintenance jobs.
type SchedulerService struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

func NewSchedulerService(loc *time.Location, logger *slog.Logger) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// ScheduleDaily registers a job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr, name string, job Job) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, s.wrap(name, job))
}

// ScheduleTagPruning removes unused tags every day at timeStr.
func (s *SchedulerService) ScheduleTagPruning(timeStr string, tags *TagService) (cron.EntryID, error) {
	return s.ScheduleDaily(timeStr, "prune-tags", func(ctx context.Context) error {
		removed, err := tags.PruneOrphans(ctx)
		if err != nil {
			return err
		}
		tagsPrunedTotal.Add(float64(removed))
		s.logger.Info("pruned orphan tags", "removed", removed)
		return nil
	})
}

// ScheduleResetTokenPurge drops expired password reset tokens every day
// at timeStr.
func (s *SchedulerService) ScheduleResetTokenPurge(timeStr string, resets *PasswordResetService) (cron.EntryID, error) {
	return s.ScheduleDaily(timeStr, "purge-reset-tokens", func(ctx context.Context) error {
		removed, err := resets.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("purged expired reset tokens", "removed", removed)
		return nil
	})
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SchedulerService) wrap(name string, job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("scheduled job finished", "job", name, "took", time.Since(started))
	}
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
