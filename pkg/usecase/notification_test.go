package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
)

func TestNotificationUseCase(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)

	_, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, f.pro.UserID)
	gt.NoError(t, err).Required()
	_, err = f.uc.Case.TransitionCase(ctx, f.pro, c.ID, types.CaseStatusDocumentCollection, "")
	gt.NoError(t, err).Required()

	notes, err := f.uc.Notification.List(ctx, f.client, false, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, notes).Length(2).Required()

	t.Run("only the recipient can mark it read", func(t *testing.T) {
		_, err := f.uc.Notification.MarkRead(ctx, f.other, notes[0].ID)
		gt.Error(t, err).Is(usecase.ErrNotificationNotFound)

		_, err = f.uc.Notification.MarkRead(ctx, f.client, "missing")
		gt.Error(t, err).Is(usecase.ErrNotificationNotFound)
	})

	t.Run("read notifications leave the unread list", func(t *testing.T) {
		n, err := f.uc.Notification.MarkRead(ctx, f.client, notes[0].ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, n.Read).True()

		again, err := f.uc.Notification.MarkRead(ctx, f.client, notes[0].ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, again.Read).True()

		unread, err := f.uc.Notification.List(ctx, f.client, true, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, unread).Length(1).Required()
		gt.Value(t, unread[0].ID).Equal(notes[1].ID)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		limited, err := f.uc.Notification.List(ctx, f.client, false, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(1)
	})

	t.Run("assignee is notified", func(t *testing.T) {
		list, err := f.uc.Notification.List(ctx, f.pro, false, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].Kind).Equal(types.EventCaseAssigned)
	})
}
