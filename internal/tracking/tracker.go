// Package tracking defines the ad-platform tracker capability. Callers always
// hold a Tracker; a disabled platform is represented by Nop.
package tracking

import (
	"context"
	"errors"
	"fmt"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/event"

	"github.com/sourcegraph/conc/iter"
)

type Tracker interface {
	Name() string
	Track(ctx context.Context, conv event.Conversion) error
}

// Nop stands in for a platform that is disabled or not configured. Every
// call reports dispatch.ErrSkipped.
type Nop struct {
	name string
}

func NewNop(name string) Nop {
	return Nop{name: name}
}

func (n Nop) Name() string {
	return n.name
}

func (n Nop) Track(context.Context, event.Conversion) error {
	return dispatch.ErrSkipped
}

// Multi forwards each conversion to every tracker concurrently, so each
// tracker gets the whole deadline of ctx.
type Multi []Tracker

func (m Multi) Name() string {
	return "multi"
}

// Track returns ErrSkipped only when every tracker skipped or does not
// support the action; otherwise the joined failures, or nil.
func (m Multi) Track(ctx context.Context, conv event.Conversion) error {
	mapper := iter.Mapper[Tracker, error]{MaxGoroutines: len(m)}
	results := mapper.Map(m, func(t *Tracker) error {
		return (*t).Track(ctx, conv)
	})

	var errs []error
	skipped := 0
	for i, err := range results {
		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrSkipped), errors.Is(err, event.ErrUnsupportedAction):
			skipped++
		default:
			errs = append(errs, fmt.Errorf("%s: %w", m[i].Name(), err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if skipped == len(m) {
		return dispatch.ErrSkipped
	}
	return nil
}

type sink struct {
	tracker Tracker
}

// AsSink turns a tracker into a fan-out sink that sends every conversion
// derived from the event.
func AsSink(t Tracker) dispatch.Sink {
	return sink{tracker: t}
}

func (s sink) Name() string {
	return s.tracker.Name()
}

func (s sink) Deliver(ctx context.Context, evt domain.Event) error {
	convs := event.ConversionsFor(evt)
	if len(convs) == 0 {
		return dispatch.ErrSkipped
	}

	var errs []error
	skipped := 0
	for _, conv := range convs {
		err := s.tracker.Track(ctx, conv)
		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrSkipped), errors.Is(err, event.ErrUnsupportedAction):
			skipped++
		default:
			errs = append(errs, fmt.Errorf("%s: %w", conv.EventID, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if skipped == len(convs) {
		return dispatch.ErrSkipped
	}
	return nil
}
