package database

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	rec := toNotificationRecord(n)
	if rec.ID == "" {
		rec.ID = string(model.NewNotificationID())
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isDuplicate(err) {
			return goerr.Wrap(ErrAlreadyExists, "notification already exists", goerr.V("id", rec.ID))
		}
		return goerr.Wrap(err, "failed to create notification", goerr.V("id", rec.ID))
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	var rec notificationRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID model.UserID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", string(userID))
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.find(q.Order("created_at DESC"))
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, maxAttempts int, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("delivered_at IS NULL AND attempts < ?", maxAttempts)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.find(q.Order("created_at ASC"))
}

func (r *notificationRepository) find(q *gorm.DB) ([]*model.Notification, error) {
	var recs []notificationRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications")
	}

	notifications := make([]*model.Notification, 0, len(recs))
	for i := range recs {
		notifications = append(notifications, recs[i].toModel())
	}
	return notifications, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	rec := toNotificationRecord(n)

	res := r.db.WithContext(ctx).Model(&notificationRecord{}).Where("id = ?", rec.ID).
		Select("*").Omit("id", "created_at").Updates(rec)
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to update notification", goerr.V("id", rec.ID))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", rec.ID))
	}
	return nil
}
