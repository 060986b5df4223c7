// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// JobHandlerFunc processes a single activated job. Handlers complete or
// fail the job themselves through the job client.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerOptions controls job polling for a single task type.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// CamundaWorker wraps one open Zeebe job worker.
type CamundaWorker struct {
	worker   worker.JobWorker
	taskType string
	logger   *zap.Logger
}

// NewWorker opens a job worker for the given task type and starts polling.
func (c *Client) NewWorker(taskType string, opts WorkerOptions, handler JobHandlerFunc, logger *zap.Logger) *CamundaWorker {
	jobWorker := c.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		taskType: taskType,
		logger:   logger,
	}
}

// Close stops polling and waits for in-flight jobs until ctx expires.
func (w *CamundaWorker) Close(ctx context.Context) {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))

	done := make(chan struct{})
	go func() {
		w.worker.Close()
		w.worker.AwaitClose()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("worker close timed out", zap.String("taskType", w.taskType))
	}
}
