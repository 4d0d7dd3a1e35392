package dispatch

import (
	"context"
	"errors"
	"time"

	"dorebell/internal/domain"
	"dorebell/internal/infrastructure/metrics"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// Sink receives accepted events. Returning an error wrapping ErrSkipped
// marks the sink as skipped rather than failed.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, evt domain.Event) error
}

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

type Outcome struct {
	Sink     string
	Status   Status
	Err      error
	Duration time.Duration
}

type Report struct {
	EventID  string
	Outcomes []Outcome
}

func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

func (r Report) Delivered() int { return r.Count(StatusDelivered) }
func (r Report) Skipped() int   { return r.Count(StatusSkipped) }
func (r Report) Failed() int    { return r.Count(StatusFailed) }

// Outcome returns the outcome recorded for the named sink.
func (r Report) Outcome(sink string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Sink == sink {
			return o, true
		}
	}
	return Outcome{}, false
}

// FanOut delivers an event to every sink concurrently. A sink that fails or
// panics does not affect the others.
type FanOut struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewFanOut(logger *zap.Logger, sinks ...Sink) *FanOut {
	return &FanOut{sinks: sinks, logger: logger}
}

func (f *FanOut) SinkNames() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}

func (f *FanOut) Dispatch(ctx context.Context, evt domain.Event) Report {
	outcomes := iter.Map(f.sinks, func(s *Sink) Outcome {
		return f.deliver(ctx, *s, evt)
	})

	report := Report{EventID: evt.RecordID(), Outcomes: outcomes}

	f.logger.Info("event dispatched",
		zap.String("eventId", report.EventID),
		zap.String("kind", string(evt.Kind)),
		zap.Int("delivered", report.Delivered()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", report.Failed()),
	)
	return report
}

func (f *FanOut) deliver(ctx context.Context, sink Sink, evt domain.Event) Outcome {
	name := sink.Name()
	start := time.Now()

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = sink.Deliver(ctx, evt)
	})
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}

	out := Outcome{Sink: name, Err: err, Duration: time.Since(start)}
	switch {
	case err == nil:
		out.Status = StatusDelivered
	case errors.Is(err, ErrSkipped):
		out.Status = StatusSkipped
		out.Err = nil
	default:
		out.Status = StatusFailed
		f.logger.Error("sink delivery failed",
			zap.String("sink", name),
			zap.String("eventId", evt.RecordID()),
			zap.Error(err),
		)
	}

	metrics.DispatchOutcomesTotal.WithLabelValues(name, string(out.Status)).Inc()
	metrics.DispatchDuration.WithLabelValues(name).Observe(out.Duration.Seconds())
	return out
}

// Detach returns a context that survives cancellation of ctx, bounded by
// timeout when it is positive.
func Detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, timeout)
}
