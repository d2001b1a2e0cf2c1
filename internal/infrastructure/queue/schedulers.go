package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"datahub-backend/internal/config"
	"datahub-backend/internal/shared"
	"datahub-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	exportCfg config.ExportConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, exportCfg config.ExportConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		exportCfg: exportCfg,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerSweepExportsJob()
}

// ================================================
// Sweep stale export directories
// ================================================
func (s *Scheduler) registerSweepExportsJob() error {
	task := asynq.NewTask(shared.TypeSweepExports, nil)

	_, err := s.scheduler.Register(
		s.exportCfg.SweepCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepExports job", err)
		return err
	}

	logger.Info("Registered SweepExports job", map[string]interface{}{
		"schedule": s.exportCfg.SweepCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
