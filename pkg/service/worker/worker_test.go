package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/repository/memory"
	"github.com/optimatax/reliefdesk/pkg/service/worker"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

type mockDeliverer struct {
	mu    sync.Mutex
	repo  *memory.Memory
	fail  bool
	calls int
}

func (m *mockDeliverer) Deliver(ctx context.Context, n *model.Notification) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	n.Attempts++
	if !m.fail {
		now := baseTime
		n.DeliveredAt = &now
	}
	if err := m.repo.Notification().Update(ctx, n); err != nil {
		return err
	}
	if m.fail {
		return errors.New("channel unavailable")
	}
	return nil
}

func (m *mockDeliverer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockPublisher struct {
	mu     sync.Mutex
	events []*model.Event
}

func (m *mockPublisher) Publish(ctx context.Context, events ...*model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func storeNotification(t *testing.T, repo *memory.Memory, createdAt time.Time, attempts int) *model.Notification {
	t.Helper()
	n := &model.Notification{
		ID:        model.NewNotificationID(),
		UserID:    "user-1",
		Kind:      types.EventDocumentRejected,
		Priority:  types.NotificationPriorityHigh,
		Title:     "Document rejected",
		Message:   "Your TAX_RETURN document was rejected",
		Attempts:  attempts,
		CreatedAt: createdAt,
	}
	gt.NoError(t, repo.Notification().Create(context.Background(), n)).Required()
	return n
}

func TestNotificationRedeliveryWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return baseTime }

	t.Run("redelivers old undelivered notifications", func(t *testing.T) {
		repo := memory.New()
		d := &mockDeliverer{repo: repo}
		old := storeNotification(t, repo, baseTime.Add(-10*time.Minute), 1)
		storeNotification(t, repo, baseTime.Add(-10*time.Second), 1)

		w := worker.NewNotificationRedeliveryWorker(repo, d, time.Minute, worker.WithRedeliveryClock(clock))
		gt.NoError(t, w.RunOnce(ctx)).Required()

		gt.Value(t, d.callCount()).Equal(1)
		got, err := repo.Notification().Get(ctx, old.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.DeliveredAt).NotNil()
		gt.Value(t, got.Attempts).Equal(2)
	})

	t.Run("stops after max attempts", func(t *testing.T) {
		repo := memory.New()
		d := &mockDeliverer{repo: repo, fail: true}
		storeNotification(t, repo, baseTime.Add(-time.Hour), 1)

		w := worker.NewNotificationRedeliveryWorker(repo, d, time.Minute,
			worker.WithRedeliveryClock(clock), worker.WithMaxAttempts(3))
		for range 5 {
			gt.NoError(t, w.RunOnce(ctx)).Required()
		}

		gt.Value(t, d.callCount()).Equal(2)
		pending, err := repo.Notification().ListUndelivered(ctx, 3, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(0)
	})
}

func newOverdueCase(t *testing.T, repo *memory.Memory, suffix int, status types.CaseStatus, deadline time.Time) *model.Case {
	t.Helper()
	c := model.NewCase(model.FormatCaseID(baseTime, suffix), "owner-1", types.ProgramIA,
		decimal.NewFromInt(12000), []int{2022}, types.CasePriorityMedium, baseTime.Add(-72*time.Hour))
	c.Status = status
	c.NextDeadline = &deadline
	created, err := repo.Case().Create(context.Background(), c)
	gt.NoError(t, err).Required()
	return created
}

func TestDeadlineWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return baseTime }

	t.Run("publishes once per passed deadline", func(t *testing.T) {
		repo := memory.New()
		pub := &mockPublisher{}
		overdue := newOverdueCase(t, repo, 1, types.CaseStatusDocumentCollection, baseTime.Add(-time.Hour))
		newOverdueCase(t, repo, 2, types.CaseStatusReview, baseTime.Add(time.Hour))

		w := worker.NewDeadlineWorker(repo, pub, time.Minute, worker.WithDeadlineClock(clock))
		gt.NoError(t, w.RunOnce(ctx)).Required()
		gt.NoError(t, w.RunOnce(ctx)).Required()

		gt.Value(t, pub.count()).Equal(1)
		gt.Value(t, pub.events[0].Kind).Equal(types.EventCaseOverdue)
		gt.Value(t, pub.events[0].CaseID).Equal(overdue.ID)

		got, err := repo.Case().Get(ctx, overdue.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.OverdueNotifiedAt).NotNil()
	})

	t.Run("ignores closed and decided cases", func(t *testing.T) {
		repo := memory.New()
		pub := &mockPublisher{}
		newOverdueCase(t, repo, 3, types.CaseStatusClosed, baseTime.Add(-time.Hour))
		newOverdueCase(t, repo, 4, types.CaseStatusAccepted, baseTime.Add(-time.Hour))

		w := worker.NewDeadlineWorker(repo, pub, time.Minute, worker.WithDeadlineClock(clock))
		gt.NoError(t, w.RunOnce(ctx)).Required()
		gt.Value(t, pub.count()).Equal(0)
	})

	t.Run("new deadline is reported again", func(t *testing.T) {
		repo := memory.New()
		pub := &mockPublisher{}
		c := newOverdueCase(t, repo, 5, types.CaseStatusSubmission, baseTime.Add(-time.Hour))

		w := worker.NewDeadlineWorker(repo, pub, time.Minute, worker.WithDeadlineClock(clock))
		gt.NoError(t, w.RunOnce(ctx)).Required()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		deadline := baseTime.Add(-time.Minute)
		got.SetDeadline(&deadline, baseTime)
		_, err = repo.Case().Update(ctx, got)
		gt.NoError(t, err).Required()

		gt.NoError(t, w.RunOnce(ctx)).Required()
		gt.Value(t, pub.count()).Equal(2)
	})
}

func TestDeadlineWorker_StartStop(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	pub := &mockPublisher{}
	newOverdueCase(t, repo, 6, types.CaseStatusFormPreparation, time.Now().Add(-time.Hour))

	w := worker.NewDeadlineWorker(repo, pub, 10*time.Minute)

	// Start worker (initial scan runs in background goroutine)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Wait for background initial scan to complete
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	if pub.count() != 1 {
		t.Fatalf("expected 1 overdue event, got %d", pub.count())
	}
}
