// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler must return an error (required by Zeebe client)
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// WorkerOptions controls job activation. Timeout is how long the broker lets
// the worker hold a job and must cover a whole generation run.
type WorkerOptions struct {
	TaskType      string
	Name          string
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	client   zbc.Client
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, logger *zap.Logger) *CamundaWorker {
	if opts.MaxJobsActive <= 0 {
		opts.MaxJobsActive = 1
	}

	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			if err := handler.Handle(client, job); err != nil {
				// the handler has already reported the outcome to the broker
				logger.Error("Handler returned error", zap.Error(err), zap.Int64("jobKey", job.Key))
			}
		}).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Name != "" {
		step = step.Name(opts.Name)
	}
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	return &CamundaWorker{
		client:   client,
		worker:   step.Open(),
		logger:   logger,
		taskType: opts.TaskType,
	}
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", zap.String("taskType", w.taskType))
}

// Stop closes the job worker and waits for in-flight handlers. The client is
// owned by the caller.
func (w *CamundaWorker) Stop(ctx context.Context) {
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
		w.logger.Warn("worker did not stop in time", zap.String("taskType", w.taskType))
	}
}
