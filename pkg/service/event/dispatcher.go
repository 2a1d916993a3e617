package event

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/utils/async"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// Dispatcher turns domain events into audit activities and notifications.
// Failures are reported and never propagate to the publisher.
type Dispatcher struct {
	repo           interfaces.Repository
	channels       []interfaces.NotificationChannel
	notifyStatuses []types.CaseStatus
	sync           bool
	now            func() time.Time

	wg sync.WaitGroup
}

var _ interfaces.EventPublisher = &Dispatcher{}

// Option is a functional option for Dispatcher
type Option func(*Dispatcher)

// WithChannels sets the external delivery channels
func WithChannels(channels ...interfaces.NotificationChannel) Option {
	return func(d *Dispatcher) {
		d.channels = append(d.channels, channels...)
	}
}

// WithNotifyStatuses sets the case statuses the owner is notified about
func WithNotifyStatuses(statuses []types.CaseStatus) Option {
	return func(d *Dispatcher) {
		d.notifyStatuses = statuses
	}
}

// WithSync handles events in the publishing goroutine
func WithSync() Option {
	return func(d *Dispatcher) {
		d.sync = true
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher
func New(repo interfaces.Repository, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:           repo,
		notifyStatuses: model.DefaultNotifyStatuses(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish records the events. In asynchronous mode it returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, events ...*model.Event) {
	if len(events) == 0 {
		return
	}

	if d.sync {
		d.handle(ctx, events)
		return
	}

	d.wg.Add(1)
	async.Dispatch(ctx, func(ctx context.Context) error {
		defer d.wg.Done()
		d.handle(ctx, events)
		return nil
	})
}

// Wait blocks until every asynchronously published event has been handled
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) handle(ctx context.Context, events []*model.Event) {
	for _, ev := range events {
		if ev == nil {
			continue
		}

		activity := model.NewActivityFromEvent(ev)
		if err := d.repo.Activity().Create(ctx, activity); err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to record activity",
				goerr.V("kind", ev.Kind), goerr.V("case_id", ev.CaseID)), "activity recording failed")
		}

		for _, n := range model.NotificationsForEvent(ev, d.notifyStatuses) {
			if err := d.repo.Notification().Create(ctx, n); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to store notification",
					goerr.V("kind", ev.Kind), goerr.V("user_id", n.UserID)), "notification storing failed")
				continue
			}
			if err := d.Deliver(ctx, n); err != nil {
				errutil.Handle(ctx, err, "notification delivery failed")
			}
		}
	}
}

// Deliver sends a stored notification to every external channel and records
// the attempt. The notification is marked delivered only when all channels succeed.
func (d *Dispatcher) Deliver(ctx context.Context, n *model.Notification) error {
	var deliverErr error
	if len(d.channels) > 0 {
		recipient, err := d.repo.User().Get(ctx, n.UserID)
		if err != nil {
			deliverErr = goerr.Wrap(err, "failed to get recipient", goerr.V("user_id", n.UserID))
		} else {
			for _, ch := range d.channels {
				if err := ch.Deliver(ctx, n, recipient); err != nil {
					deliverErr = goerr.Wrap(err, "channel delivery failed",
						goerr.V("channel", ch.Name()), goerr.V("notification_id", n.ID))
					break
				}
			}
		}
	}

	n.Attempts++
	if deliverErr == nil {
		now := d.now().UTC()
		n.DeliveredAt = &now
	}
	if err := d.repo.Notification().Update(ctx, n); err != nil {
		return goerr.Wrap(err, "failed to update notification delivery", goerr.V("notification_id", n.ID))
	}

	if deliverErr == nil {
		logging.From(ctx).Debug("notification delivered", "notification_id", n.ID, "attempts", n.Attempts)
	}
	return deliverErr
}
