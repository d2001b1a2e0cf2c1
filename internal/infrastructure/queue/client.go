package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"datahub-backend/internal/domains/dataset/job"
	"datahub-backend/internal/shared"
	"datahub-backend/pkg/logger"
)

// ExportCleaner schedules removal of a served archive directory.
type ExportCleaner interface {
	ScheduleExportCleanup(ctx context.Context, dir string) error
}

// AsynqExportCleaner enqueues dataset:cleanup_export tasks.
type AsynqExportCleaner struct {
	client *asynq.Client
	delay  time.Duration
}

func NewAsynqExportCleaner(client *asynq.Client, delay time.Duration) *AsynqExportCleaner {
	return &AsynqExportCleaner{client: client, delay: delay}
}

func (c *AsynqExportCleaner) ScheduleExportCleanup(ctx context.Context, dir string) error {
	payload, err := json.Marshal(job.CleanupExportPayload{Dir: dir})
	if err != nil {
		return fmt.Errorf("marshal cleanup payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeCleanupExport, payload)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.ProcessIn(c.delay),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeCleanupExport, err)
	}

	logger.Info("Export cleanup scheduled", map[string]interface{}{
		"task_id": info.ID,
		"dir":     dir,
		"in":      c.delay.String(),
	})
	return nil
}
