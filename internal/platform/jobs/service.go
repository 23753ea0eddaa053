package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/notifications"
	"intranet/internal/platform/config"
)

const (
	JobPeriodSweep = "period_sweep"
	JobTrashPurge  = "trash_purge"
)

type Service struct {
	DB            *pgxpool.Pool
	Cfg           config.Config
	Evaluations   *evaluation.Service
	Notifications *notifications.Service
	queue         chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, evals *evaluation.Service, notifs *notifications.Service) *Service {
	return &Service{
		DB:            db,
		Cfg:           cfg,
		Evaluations:   evals,
		Notifications: notifs,
		queue:         make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.PeriodSweepInterval > 0 {
		go s.schedule(ctx, s.Cfg.PeriodSweepInterval, s.enqueuePeriodSweep)
	}
	if s.Cfg.TrashPurgeInterval > 0 {
		go s.schedule(ctx, s.Cfg.TrashPurgeInterval, s.enqueueTrashPurge)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job inline, still recording it in job_runs. Used by the
// admin endpoints to trigger a sweep on demand.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) RunPeriodSweep(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobPeriodSweep, s.periodSweep)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, enqueue func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

func (s *Service) enqueuePeriodSweep() {
	s.Enqueue(JobPeriodSweep, s.periodSweep)
}

func (s *Service) periodSweep(ctx context.Context) (any, error) {
	opened, err := s.Evaluations.SweepDuePeriods(ctx)
	if err != nil {
		return map[string]any{"periodsOpened": opened}, err
	}
	reminded, err := s.Evaluations.RemindPendingReviews(ctx)
	return map[string]any{"periodsOpened": opened, "reviewReminders": reminded}, err
}

func (s *Service) enqueueTrashPurge() {
	s.Enqueue(JobTrashPurge, func(ctx context.Context) (any, error) {
		purged, err := s.Evaluations.PurgeTrash(ctx, s.Cfg.TrashRetentionDays)
		if err != nil {
			return map[string]any{"evaluationsPurged": purged}, err
		}
		expired, nErr := s.Notifications.PurgeExpired(ctx)
		return map[string]any{
			"evaluationsPurged":    purged,
			"notificationsExpired": expired,
		}, nErr
	})
}
