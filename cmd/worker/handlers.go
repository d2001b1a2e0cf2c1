package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	datasetJob "datahub-backend/internal/domains/dataset/job"
	"datahub-backend/internal/shared"
)

// HandlerRegistry holds the export maintenance handlers.
type HandlerRegistry struct {
	cleanupExport *datasetJob.CleanupExportHandler
	sweepExports  *datasetJob.SweepExportsHandler
}

func initializeHandlers(cfg *Config) *HandlerRegistry {
	return &HandlerRegistry{
		cleanupExport: datasetJob.NewCleanupExportHandler(cfg.TempDir),
		sweepExports:  datasetJob.NewSweepExportsHandler(cfg.TempDir, cfg.Export.MaxAge),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Use(logTask)
	mux.HandleFunc(shared.TypeCleanupExport, h.cleanupExport.ProcessTask)
	mux.HandleFunc(shared.TypeSweepExports, h.sweepExports.ProcessTask)
}

// logTask records type, task id and duration of every processed task.
func logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		taskID, _ := asynq.GetTaskID(ctx)

		err := next.ProcessTask(ctx, t)

		event := log.Debug()
		if err != nil {
			event = log.Warn().Err(err)
		}
		event.
			Str("type", t.Type()).
			Str("task_id", taskID).
			Dur("duration", time.Since(start)).
			Msg("[Worker] Task processed")
		return err
	})
}
