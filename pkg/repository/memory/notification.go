package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[model.NotificationID]*model.Notification
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[model.NotificationID]*model.Notification),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := n.Copy()
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	if _, exists := r.notifications[created.ID]; exists {
		return goerr.Wrap(ErrAlreadyExists, "notification already exists", goerr.V("id", created.ID))
	}
	r.notifications[created.ID] = created
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifications[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return n.Copy(), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID model.UserID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		result = append(result, n.Copy())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, maxAttempts int, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Notification
	for _, n := range r.notifications {
		if n.DeliveredAt == nil && n.Attempts < maxAttempts {
			result = append(result, n.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[n.ID]; !exists {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", n.ID))
	}
	r.notifications[n.ID] = n.Copy()
	return nil
}
