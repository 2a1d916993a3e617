package database

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	rec := toActivityRecord(a)
	if rec.ID == "" {
		rec.ID = string(model.NewActivityID())
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return goerr.Wrap(err, "failed to create activity", goerr.V("id", rec.ID))
	}
	return nil
}

func (r *activityRepository) list(ctx context.Context, column, value string, limit int) ([]*model.Activity, error) {
	q := r.db.WithContext(ctx).Where(column+" = ?", value).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []activityRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V(column, value))
	}

	activities := make([]*model.Activity, 0, len(recs))
	for i := range recs {
		activities = append(activities, recs[i].toModel())
	}
	return activities, nil
}

func (r *activityRepository) ListByCase(ctx context.Context, caseID model.CaseID, limit int) ([]*model.Activity, error) {
	return r.list(ctx, "case_id", string(caseID), limit)
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID model.UserID, limit int) ([]*model.Activity, error) {
	return r.list(ctx, "actor_id", string(actorID), limit)
}
