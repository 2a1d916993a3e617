package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type notificationRepository struct {
	collections
}

func (r *notificationRepository) notifications() *firestore.CollectionRef {
	return r.collection(notificationsCollection)
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	doc := toNotificationDoc(n)
	if doc.ID == "" {
		doc.ID = string(model.NewNotificationID())
	}
	if _, err := r.notifications().Doc(doc.ID).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(ErrAlreadyExists, "notification already exists", goerr.V("id", doc.ID))
		}
		return goerr.Wrap(err, "failed to create notification", goerr.V("id", doc.ID))
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	snap, err := r.notifications().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}

	var doc notificationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *notificationRepository) query(ctx context.Context, q firestore.Query, match func(n *model.Notification) bool) ([]*model.Notification, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Notification
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications")
		}

		var doc notificationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", snap.Ref.ID))
		}
		if n := doc.toModel(); match(n) {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID model.UserID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	result, err := r.query(ctx, r.notifications().Where("user_id", "==", string(userID)),
		func(n *model.Notification) bool { return !unreadOnly || !n.Read })
	if err != nil {
		return nil, err
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
	result, err := r.query(ctx, r.notifications().Where("delivered", "==", false),
		func(n *model.Notification) bool { return n.Attempts < maxAttempts })
	if err != nil {
		return nil, err
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
	doc := toNotificationDoc(n)
	ref := r.notifications().Doc(doc.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", doc.ID))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", doc.ID))
		}
		return tx.Set(ref, doc)
	})
}
