package workflow

import (
	"context"
	"time"

	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/metrics"
	"figma-to-fsd/internal/models"
)

const (
	sinkTimeout      = 5 * time.Second
	sinkQueueSize    = 64
	sinkDrainTimeout = 10 * time.Second
)

// EventSink receives a copy of every event of every run. Sinks are
// best-effort: a failing sink is logged and never affects the run.
type EventSink interface {
	Name() string
	Publish(ctx context.Context, ev models.Event) error
}

// emitter numbers events and hands them to the consumer channel. Sinks get
// their copy from a per-run queue drained by a separate goroutine, so a slow
// sink never holds back the consumer. emit and close are only called from
// the run goroutine.
type emitter struct {
	runID  string
	seq    int
	out    chan<- models.Event
	sinks  []EventSink
	logger logger.Logger

	queue  chan models.Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func newEmitter(runID string, out chan<- models.Event, sinks []EventSink, log logger.Logger) *emitter {
	e := &emitter{runID: runID, out: out, sinks: sinks, logger: log}
	if len(sinks) > 0 {
		e.queue = make(chan models.Event, sinkQueueSize)
		e.done = make(chan struct{})
		e.ctx, e.cancel = context.WithCancel(context.Background())
		go e.drain()
	}
	return e
}

// emit delivers ev. It returns false when ctx ended before the consumer took
// the event, so a consumer that stopped reading never blocks the run.
func (e *emitter) emit(ctx context.Context, ev models.Event) bool {
	e.seq++
	ev.RunID = e.runID
	ev.Sequence = e.seq
	ev.Timestamp = time.Now().UTC()

	e.enqueue(ev)

	select {
	case e.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *emitter) enqueue(ev models.Event) {
	if e.queue == nil {
		return
	}
	select {
	case e.queue <- ev:
	default:
		metrics.SinkErrors.WithLabelValues("queue").Inc()
		e.logger.Warn("Event sink queue full, dropping event", map[string]interface{}{
			"runId":    ev.RunID,
			"sequence": ev.Sequence,
		})
	}
}

func (e *emitter) drain() {
	defer close(e.done)
	for ev := range e.queue {
		e.publish(ev)
	}
}

// close waits for queued events to reach the sinks. Publishes still pending
// after sinkDrainTimeout are cancelled.
func (e *emitter) close() {
	if e.queue == nil {
		return
	}
	close(e.queue)

	timer := time.NewTimer(sinkDrainTimeout)
	defer timer.Stop()
	select {
	case <-e.done:
	case <-timer.C:
		e.logger.Warn("Event sinks did not drain in time", map[string]interface{}{"runId": e.runID})
	}
	e.cancel()
}

func (e *emitter) publish(ev models.Event) {
	ctx, cancel := context.WithTimeout(e.ctx, sinkTimeout)
	defer cancel()

	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			e.logger.Warn("Event sink failed", map[string]interface{}{
				"runId":    ev.RunID,
				"sink":     sink.Name(),
				"sequence": ev.Sequence,
				"error":    err.Error(),
			})
		}
	}
}
