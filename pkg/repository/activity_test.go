package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

func runActivityRepositoryTest(t *testing.T, newRepo repositoryFactory) {
	t.Helper()

	t.Run("ListByCase returns newest first with limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		actor := model.NewUserID()
		c := newRepoCase(model.NewUserID(), 0)

		created := model.NewActivityFromEvent(model.NewCaseEvent(types.EventCaseCreated, actor, c, testTime(0)))
		gt.NoError(t, repo.Activity().Create(ctx, created)).Required()

		ev := model.NewCaseEvent(types.EventCaseStatusChanged, actor, c, testTime(time.Hour))
		ev.FromStatus = types.CaseStatusInitialAssessment
		ev.ToStatus = types.CaseStatusDocumentCollection
		changed := model.NewActivityFromEvent(ev)
		gt.NoError(t, repo.Activity().Create(ctx, changed)).Required()

		all, err := repo.Activity().ListByCase(ctx, c.ID, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2).Required()
		gt.Value(t, all[0].ID).Equal(changed.ID)
		gt.Value(t, all[0].Kind).Equal(types.EventCaseStatusChanged)
		gt.Value(t, all[0].Context.FromStatus).Equal(types.CaseStatusInitialAssessment)
		gt.Value(t, all[0].Context.ToStatus).Equal(types.CaseStatusDocumentCollection)
		gt.Value(t, all[0].Description).Equal(changed.Description)
		gt.Value(t, all[1].ID).Equal(created.ID)

		limited, err := repo.Activity().ListByCase(ctx, c.ID, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(1).Required()
		gt.Value(t, limited[0].ID).Equal(changed.ID)
	})

	t.Run("ListByActor filters by actor", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		actor := model.NewUserID()
		other := model.NewUserID()
		c := newRepoCase(model.NewUserID(), 0)

		gt.NoError(t, repo.Activity().Create(ctx, model.NewActivityFromEvent(
			model.NewCaseEvent(types.EventCaseCreated, actor, c, testTime(0))))).Required()
		gt.NoError(t, repo.Activity().Create(ctx, model.NewActivityFromEvent(
			model.NewCaseEvent(types.EventCaseAssigned, other, c, testTime(time.Minute))))).Required()

		list, err := repo.Activity().ListByActor(ctx, actor, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].Kind).Equal(types.EventCaseCreated)
		gt.Value(t, list[0].Context.CaseID).Equal(c.ID)
	})
}

func TestActivityRepository(t *testing.T) {
	runAllBackends(t, runActivityRepositoryTest)
}
