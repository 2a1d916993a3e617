package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

func newRepoNotification(user model.UserID, offset time.Duration) *model.Notification {
	return &model.Notification{
		ID:        model.NewNotificationID(),
		UserID:    user,
		Kind:      types.EventCaseStatusChanged,
		Priority:  types.NotificationPriorityNormal,
		Title:     "Case status updated",
		Message:   "Your case moved to REVIEW",
		CaseID:    newTestCaseID(),
		CreatedAt: testTime(offset),
	}
}

func runNotificationRepositoryTest(t *testing.T, newRepo repositoryFactory) {
	t.Helper()

	t.Run("ListByUser returns newest first and filters unread", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := model.NewUserID()

		older := newRepoNotification(user, 0)
		older.Read = true
		newer := newRepoNotification(user, time.Hour)
		gt.NoError(t, repo.Notification().Create(ctx, older)).Required()
		gt.NoError(t, repo.Notification().Create(ctx, newer)).Required()
		gt.NoError(t, repo.Notification().Create(ctx, newRepoNotification(model.NewUserID(), 0))).Required()

		all, err := repo.Notification().ListByUser(ctx, user, false, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2).Required()
		gt.Value(t, all[0].ID).Equal(newer.ID)

		unread, err := repo.Notification().ListByUser(ctx, user, true, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, unread).Length(1).Required()
		gt.Value(t, unread[0].ID).Equal(newer.ID)
	})

	t.Run("ListUndelivered skips delivered and exhausted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := model.NewUserID()

		pending := newRepoNotification(user, 0)
		exhausted := newRepoNotification(user, time.Minute)
		exhausted.Attempts = 5
		delivered := newRepoNotification(user, 2*time.Minute)
		at := testTime(3 * time.Minute)
		delivered.DeliveredAt = &at
		for _, n := range []*model.Notification{pending, exhausted, delivered} {
			gt.NoError(t, repo.Notification().Create(ctx, n)).Required()
		}

		list, err := repo.Notification().ListUndelivered(ctx, 5, 0)
		gt.NoError(t, err).Required()

		var ids []model.NotificationID
		for _, n := range list {
			if n.UserID == user {
				ids = append(ids, n.ID)
			}
		}
		gt.Array(t, ids).Length(1).Required()
		gt.Value(t, ids[0]).Equal(pending.ID)
	})

	t.Run("Update marks delivered", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		n := newRepoNotification(model.NewUserID(), 0)
		gt.NoError(t, repo.Notification().Create(ctx, n)).Required()

		at := testTime(time.Minute)
		n.DeliveredAt = &at
		n.Attempts = 1
		n.Read = true
		gt.NoError(t, repo.Notification().Update(ctx, n)).Required()

		got, err := repo.Notification().Get(ctx, n.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Attempts).Equal(1)
		gt.Bool(t, got.Read).True()
		gt.Value(t, got.DeliveredAt).NotNil().Required()
		gt.Bool(t, got.DeliveredAt.Equal(at)).True()
	})

	t.Run("Update returns ErrNotFound for unknown notification", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Notification().Update(context.Background(), newRepoNotification(model.NewUserID(), 0))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestNotificationRepository(t *testing.T) {
	runAllBackends(t, runNotificationRepositoryTest)
}
