// Package workflow runs a generation request through its stages and reports
// progress as an ordered stream of events.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"figma-to-fsd/internal/common/config"
	"figma-to-fsd/internal/common/confluence"
	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/llm"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/metrics"
	"figma-to-fsd/internal/common/observability"
	"figma-to-fsd/internal/common/validation"
	"figma-to-fsd/internal/models"
)

// DesignSource is the part of the Figma client the workflow needs.
type DesignSource interface {
	GetDocument(ctx context.Context, token, fileKey, nodeID string) (*models.DesignNode, error)
	GetImages(ctx context.Context, token, fileKey string, nodeIDs []string, format string, scale float64) (map[string]string, error)
}

// PagePublisher is the part of the Confluence client the workflow needs.
type PagePublisher interface {
	CreatePage(ctx context.Context, in confluence.PageInput) (*confluence.Page, error)
}

// Atlassian clients carry per-request credentials, so they are built per run.
type (
	IssueCreatorFactory  func(creds models.AtlassianCredentials) IssueCreator
	PagePublisherFactory func(creds models.AtlassianCredentials) PagePublisher
)

type Dependencies struct {
	Config        *config.Config
	Figma         DesignSource
	LLM           llm.Provider
	Issues        IssueCreatorFactory
	Pages         PagePublisherFactory
	Sinks         []EventSink
	Observability *observability.Observability
	Logger        logger.Logger
}

type Orchestrator struct {
	cfg    *config.Config
	figma  DesignSource
	llm    llm.Provider
	issues IssueCreatorFactory
	pages  PagePublisherFactory
	sinks  []EventSink
	obs    *observability.Observability
	logger logger.Logger
}

func New(deps Dependencies) *Orchestrator {
	o := &Orchestrator{
		cfg:    deps.Config,
		figma:  deps.Figma,
		llm:    deps.LLM,
		issues: deps.Issues,
		pages:  deps.Pages,
		sinks:  deps.Sinks,
		obs:    deps.Observability,
		logger: deps.Logger,
	}
	if o.obs == nil {
		o.obs = observability.NewNoop()
	}
	if o.logger == nil {
		o.logger = logger.NewNoOpLogger()
	}
	return o
}

// Run starts a generation run and returns its events. The channel carries a
// plan event, stage transitions and sub-task events, then exactly one
// complete or error event, and is closed once the event sinks have drained.
// Cancelling ctx stops the run at the next stage boundary.
func (o *Orchestrator) Run(ctx context.Context, req models.GenerationRequest) <-chan models.Event {
	buffer := o.cfg.Workflow.EventBuffer
	if buffer <= 0 {
		buffer = 16
	}
	out := make(chan models.Event, buffer)

	r := &run{
		o:   o,
		req: req,
		em:  newEmitter(uuid.New().String(), out, o.sinks, o.logger),
	}
	r.log = o.logger.With(map[string]interface{}{"runId": r.em.runID})

	go func() {
		defer close(out)
		defer r.em.close()
		r.execute(ctx)
	}()
	return out
}

func (r *run) execute(ctx context.Context) {
	o := r.o
	if r.req.Mode == "" {
		r.req.Mode = models.ModeBoth
	}

	started := time.Now()
	metrics.RunsActive.Inc()
	defer metrics.RunsActive.Dec()

	outcome := "success"
	defer func() {
		metrics.RunsTotal.WithLabelValues(string(r.req.Mode), outcome).Inc()
		o.obs.RecordRunProcessed(ctx, string(r.req.Mode), outcome)
		o.obs.RecordRunDuration(ctx, time.Since(started), outcome)
	}()

	if err := validation.ValidateRequest(r.req); err != nil {
		outcome = "invalid"
		r.fail(ctx, err)
		return
	}
	if err := o.llm.Ready(); err != nil {
		outcome = "invalid"
		r.fail(ctx, err)
		return
	}

	r.log.Info("Generation started", map[string]interface{}{
		"mode":          string(r.req.Mode),
		"componentName": r.req.ComponentName,
		"figmaUrl":      r.req.FigmaURL,
	})

	stages := stagesFor(r.req.Mode)
	if !r.emitPlan(ctx, stages) {
		outcome = "cancelled"
		return
	}

	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			outcome = "cancelled"
			r.fail(ctx, apperrors.NewRunCancelledError(err))
			return
		}
		if err := r.runStage(ctx, i+1, s); err != nil {
			outcome = "failed"
			r.fail(ctx, err)
			return
		}
	}

	result := r.result()
	r.log.Info("Generation completed", map[string]interface{}{
		"durationMs":     time.Since(started).Milliseconds(),
		"parentKey":      result.ParentKey,
		"documentUrl":    result.DocumentURL,
		"failedTasks":    len(result.FailedTasks),
		"completedTasks": len(result.CompletedTasks),
	})
	r.em.emit(ctx, models.Event{
		Type:    models.EventComplete,
		Message: completionMessage(result),
		Data:    r.notifyData(),
		Result:  result,
	})
}

func (r *run) emitPlan(ctx context.Context, stages []stage) bool {
	plan := make([]map[string]interface{}, len(stages))
	for i, s := range stages {
		plan[i] = map[string]interface{}{
			"index":  i + 1,
			"name":   string(s.name),
			"label":  s.label,
			"status": string(models.StatusPending),
		}
	}
	return r.em.emit(ctx, models.Event{
		Type:    models.EventPlan,
		Message: fmt.Sprintf("Generating %s output for %s in %d stages", r.req.Mode, r.req.ComponentName, len(stages)),
		Data: map[string]interface{}{
			"mode":   string(r.req.Mode),
			"stages": plan,
		},
	})
}

// runStage executes one stage under its own deadline and reports the
// in_progress and final transitions. Only a failed required stage returns an
// error.
func (r *run) runStage(ctx context.Context, index int, s stage) error {
	o := r.o
	timeout := o.stageTimeout(s.name)

	r.transition(ctx, index, s, models.StatusInProgress, s.label, nil)
	r.log.Info("Stage started", map[string]interface{}{"stage": string(s.name), "index": index})

	var (
		stageCtx context.Context
		cancel   context.CancelFunc
	)
	if timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		stageCtx, cancel = context.WithCancel(ctx)
	}
	stageCtx, span := o.obs.StartSpan(stageCtx, string(s.name),
		attribute.String("runId", r.em.runID),
		attribute.Int("stage", index),
	)

	started := time.Now()
	message, err := s.exec(r, stageCtx)
	if err != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = apperrors.NewStageTimeoutError(string(s.name), timeout)
	}
	observability.EndSpan(span, err)
	cancel()

	duration := time.Since(started)
	metrics.StageDuration.WithLabelValues(string(s.name)).Observe(duration.Seconds())

	fields := map[string]interface{}{"stage": string(s.name), "durationMs": duration.Milliseconds()}

	if err == nil {
		r.log.Info("Stage completed", fields)
		r.transition(ctx, index, s, models.StatusComplete, message, nil)
		return nil
	}

	if s.policy == bestEffort {
		fields["error"] = err.Error()
		r.log.Warn("Stage skipped", fields)
		r.transition(ctx, index, s, models.StatusComplete, fmt.Sprintf("%s skipped: %s", s.label, describeError(err)),
			map[string]interface{}{"skipped": true})
		return nil
	}

	fields["error"] = err.Error()
	r.log.Error("Stage failed", fields)
	stdErr := apperrors.AsStandardError(err)
	r.em.emit(ctx, models.Event{
		Type:      models.EventStage,
		Stage:     index,
		StageName: s.name,
		Status:    models.StatusError,
		Message:   fmt.Sprintf("%s failed: %s", s.label, describeError(err)),
		Error:     stdErr,
	})
	metrics.StageTransitions.WithLabelValues(string(s.name), string(models.StatusError)).Inc()
	o.obs.RecordStage(ctx, string(s.name), string(models.StatusError))
	return err
}

func (r *run) transition(ctx context.Context, index int, s stage, status models.StageStatus, message string, data map[string]interface{}) {
	if status == models.StatusComplete && len(r.stageData) > 0 {
		if data == nil {
			data = make(map[string]interface{}, len(r.stageData))
		}
		for k, v := range r.stageData {
			data[k] = v
		}
	}
	r.stageData = nil

	metrics.StageTransitions.WithLabelValues(string(s.name), string(status)).Inc()
	if status == models.StatusComplete {
		r.o.obs.RecordStage(ctx, string(s.name), string(status))
	}
	r.em.emit(ctx, models.Event{
		Type:      models.EventStage,
		Stage:     index,
		StageName: s.name,
		Status:    status,
		Message:   message,
		Data:      data,
	})
}

// fail emits the single terminal error event of a run.
func (r *run) fail(ctx context.Context, err error) {
	stdErr := apperrors.AsStandardError(err)
	r.log.Error("Generation failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
	})

	data := r.notifyData()
	if data == nil {
		data = map[string]interface{}{}
	}
	data["code"] = string(stdErr.Code)
	if r.tickets != nil {
		data["completedTasks"] = r.tickets.CompletedTasks
		data["failedTasks"] = r.tickets.FailedTasks
	}

	r.em.emit(ctx, models.Event{
		Type:    models.EventError,
		Message: stdErr.Message,
		Data:    data,
		Error:   stdErr,
	})
}

func (r *run) notifyData() map[string]interface{} {
	if len(r.req.NotifyEmails) == 0 {
		return nil
	}
	return map[string]interface{}{models.DataNotifyEmails: r.req.NotifyEmails}
}

func (o *Orchestrator) stageTimeout(name models.StageName) time.Duration {
	if name == models.StageAIAnalysis {
		return config.GetDuration(o.cfg.Workflow.AITimeout)
	}
	return config.GetDuration(o.cfg.Workflow.StageTimeout)
}

func completionMessage(res *models.GenerationResult) string {
	var msg string
	switch res.Mode {
	case models.ModeJira:
		msg = fmt.Sprintf("Created %s with %d sub-tasks", res.ParentKey, res.Summary.SubtasksCreated)
	case models.ModeConfluence:
		msg = fmt.Sprintf("Published specification for %s", res.ComponentName)
	default:
		msg = fmt.Sprintf("Created %s with %d sub-tasks and published the specification", res.ParentKey, res.Summary.SubtasksCreated)
	}
	if n := len(res.FailedTasks); n > 0 {
		msg += fmt.Sprintf(" (%d task(s) failed)", n)
	}
	return msg
}
