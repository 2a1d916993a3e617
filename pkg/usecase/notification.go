package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type NotificationUseCase struct {
	repo interfaces.Repository
}

func NewNotificationUseCase(repo interfaces.Repository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// List returns the actor's notifications, newest first
func (uc *NotificationUseCase) List(ctx context.Context, actor *model.Actor, unreadOnly bool, limit int) ([]*model.Notification, error) {
	list, err := uc.repo.Notification().ListByUser(ctx, actor.UserID, unreadOnly, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V(UserIDKey, actor.UserID))
	}
	return list, nil
}

// MarkRead marks one of the actor's notifications as read
func (uc *NotificationUseCase) MarkRead(ctx context.Context, actor *model.Actor, id model.NotificationID) (*model.Notification, error) {
	n, err := uc.repo.Notification().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V(NotificationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V(NotificationIDKey, id))
	}
	if n.UserID != actor.UserID {
		return nil, goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V(NotificationIDKey, id))
	}

	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := uc.repo.Notification().Update(ctx, n); err != nil {
		return nil, goerr.Wrap(err, "failed to update notification", goerr.V(NotificationIDKey, id))
	}
	return n, nil
}
