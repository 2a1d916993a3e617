package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type activityRepository struct {
	mu         sync.RWMutex
	activities []*model.Activity
}

func newActivityRepository() *activityRepository {
	return &activityRepository{}
}

func copyActivity(a *model.Activity) *model.Activity {
	copied := *a
	return &copied
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyActivity(a)
	if created.ID == "" {
		created.ID = model.NewActivityID()
	}
	r.activities = append(r.activities, created)
	return nil
}

func (r *activityRepository) list(match func(a *model.Activity) bool, limit int) []*model.Activity {
	// Walk backwards so activities recorded at the same instant stay newest first.
	var result []*model.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		if match(r.activities[i]) {
			result = append(result, copyActivity(r.activities[i]))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (r *activityRepository) ListByCase(ctx context.Context, caseID model.CaseID, limit int) ([]*model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(a *model.Activity) bool { return a.Context.CaseID == caseID }, limit), nil
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID model.UserID, limit int) ([]*model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(a *model.Activity) bool { return a.ActorID == actorID }, limit), nil
}
