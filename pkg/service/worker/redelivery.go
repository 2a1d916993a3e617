package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

const (
	DefaultMaxDeliveryAttempts = 5
	defaultRedeliveryBatch     = 100
)

// Deliverer sends a stored notification to external channels and records the attempt
type Deliverer interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

// NotificationRedeliveryWorker retries notifications whose external delivery
// failed, until they are delivered or run out of attempts
type NotificationRedeliveryWorker struct {
	*loop
	repo        interfaces.Repository
	deliverer   Deliverer
	maxAttempts int
	minAge      time.Duration
	now         func() time.Time
}

// RedeliveryOption configures NotificationRedeliveryWorker
type RedeliveryOption func(*NotificationRedeliveryWorker)

// WithMaxAttempts caps delivery attempts per notification
func WithMaxAttempts(n int) RedeliveryOption {
	return func(w *NotificationRedeliveryWorker) {
		w.maxAttempts = n
	}
}

// WithRedeliveryClock replaces the time source
func WithRedeliveryClock(now func() time.Time) RedeliveryOption {
	return func(w *NotificationRedeliveryWorker) {
		w.now = now
	}
}

// NewNotificationRedeliveryWorker creates the worker. Notifications younger
// than one interval are left to their in-flight first delivery.
func NewNotificationRedeliveryWorker(repo interfaces.Repository, deliverer Deliverer, interval time.Duration, opts ...RedeliveryOption) *NotificationRedeliveryWorker {
	w := &NotificationRedeliveryWorker{
		repo:        repo,
		deliverer:   deliverer,
		maxAttempts: DefaultMaxDeliveryAttempts,
		minAge:      interval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.loop = newLoop("notification redelivery", interval, w.RunOnce)
	return w
}

// RunOnce performs a single redelivery pass
func (w *NotificationRedeliveryWorker) RunOnce(ctx context.Context) error {
	pending, err := w.repo.Notification().ListUndelivered(ctx, w.maxAttempts, defaultRedeliveryBatch)
	if err != nil {
		return goerr.Wrap(err, "failed to list undelivered notifications")
	}

	now := w.now()
	var delivered, failed int
	for _, n := range pending {
		if now.Sub(n.CreatedAt) < w.minAge {
			continue
		}
		if err := w.deliverer.Deliver(ctx, n); err != nil {
			failed++
			logging.From(ctx).Warn("notification redelivery failed",
				"notification_id", n.ID,
				"attempts", n.Attempts,
				"error", err.Error())
			continue
		}
		delivered++
	}

	if delivered+failed > 0 {
		logging.From(ctx).Info("notification redelivery completed",
			"delivered", delivered,
			"failed", failed)
	}
	return nil
}
