package worker

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// DeadlineWorker reports active cases whose next deadline has passed. Each
// deadline is reported once.
type DeadlineWorker struct {
	*loop
	repo      interfaces.Repository
	publisher interfaces.EventPublisher
	now       func() time.Time
}

// DeadlineOption configures DeadlineWorker
type DeadlineOption func(*DeadlineWorker)

// WithDeadlineClock replaces the time source
func WithDeadlineClock(now func() time.Time) DeadlineOption {
	return func(w *DeadlineWorker) {
		w.now = now
	}
}

// NewDeadlineWorker creates the worker
func NewDeadlineWorker(repo interfaces.Repository, publisher interfaces.EventPublisher, interval time.Duration, opts ...DeadlineOption) *DeadlineWorker {
	w := &DeadlineWorker{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.loop = newLoop("deadline scan", interval, w.RunOnce)
	return w
}

// RunOnce scans for overdue cases and publishes CaseOverdue events
func (w *DeadlineWorker) RunOnce(ctx context.Context) error {
	now := w.now().UTC()
	cases, err := w.repo.Case().List(ctx, interfaces.WithDeadlineBefore(now))
	if err != nil {
		return goerr.Wrap(err, "failed to list cases past deadline")
	}

	var events []*model.Event
	for _, c := range cases {
		if !c.Status.IsActive() {
			continue
		}
		ev := c.MarkOverdue(now)
		if ev == nil {
			continue
		}

		if _, err := w.repo.Case().Update(ctx, c); err != nil {
			if errors.Is(err, interfaces.ErrConflict) {
				// Modified since listing; picked up again on the next scan.
				continue
			}
			return goerr.Wrap(err, "failed to mark case overdue", goerr.V(model.CaseIDKey, c.ID))
		}
		events = append(events, ev)
	}

	if len(events) > 0 {
		logging.From(ctx).Info("overdue cases found", "count", len(events))
		w.publisher.Publish(ctx, events...)
	}
	return nil
}
