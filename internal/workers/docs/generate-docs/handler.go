// Package generatedocs is the Zeebe job worker that runs one generation per job.
package generatedocs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"figma-to-fsd/internal/common/config"
	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/models"
	"figma-to-fsd/internal/workflow"
)

const (
	TaskType  = "fsd.generate-docs"
	ConfigKey = "generate-docs"
)

// commandTimeout bounds the complete and throw-error calls to the broker.
const commandTimeout = 30 * time.Second

// Runner starts a generation run. *workflow.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, req models.GenerationRequest) <-chan models.Event
}

type Handler struct {
	config       *Config
	runner       Runner
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Runner       Runner
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", ConfigKey, err)
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("%s: runner is required", ConfigKey)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       workerConfig,
		runner:       opts.Runner,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}, nil
}

// Handle runs the generation carried by the job. Failures are thrown as BPMN
// errors and also returned so the worker wrapper can log them.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.throw(client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.throw(client, job, err)
		return err
	}

	return h.completeJob(client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, apperrors.NewInputValidationError(fmt.Sprintf("job variables: %v", err))
	}
	return &input, nil
}

// Execute runs one generation to its terminal event.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{}
	result, err := workflow.Await(h.runner.Run(ctx, *input), func(ev models.Event) {
		output.RunID = ev.RunID
		h.logger.Debug("run event", map[string]interface{}{
			"runId":    ev.RunID,
			"sequence": ev.Sequence,
			"type":     string(ev.Type),
			"stage":    string(ev.StageName),
			"status":   string(ev.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	output.Result = result
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.Variables())
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}
	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("Generation job completed", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"runId":       output.RunID,
		"parentKey":   output.Result.ParentKey,
		"documentUrl": output.Result.DocumentURL,
		"failedTasks": len(output.Result.FailedTasks),
	})
	return nil
}

func (h *Handler) throw(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) IsEnabled() bool { return h.config.Enabled }

func (h *Handler) GetConfig() *Config { return h.config }
