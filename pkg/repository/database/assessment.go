package database

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type assessmentRepository struct {
	db *gorm.DB
}

func (r *assessmentRepository) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	created := a.Copy()
	if created.ID == "" {
		created.ID = model.NewAssessmentID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}
	created.Derive()

	rec := toAssessmentRecord(created)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isDuplicate(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "assessment already exists", goerr.V("id", rec.ID))
		}
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V("id", rec.ID))
	}
	return rec.toModel(), nil
}

func (r *assessmentRepository) Get(ctx context.Context, id model.AssessmentID) (*model.Assessment, error) {
	var rec assessmentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *assessmentRepository) GetLatestByCase(ctx context.Context, caseID model.CaseID) (*model.Assessment, error) {
	var rec assessmentRecord
	if err := r.db.WithContext(ctx).Where("case_id = ?", string(caseID)).
		Order("created_at DESC").First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("case_id", caseID))
		}
		return nil, goerr.Wrap(err, "failed to get latest assessment", goerr.V("case_id", caseID))
	}
	return rec.toModel(), nil
}

func (r *assessmentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Assessment, error) {
	var recs []assessmentRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", string(userID)).
		Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments", goerr.V("user_id", userID))
	}

	assessments := make([]*model.Assessment, 0, len(recs))
	for i := range recs {
		assessments = append(assessments, recs[i].toModel())
	}
	return assessments, nil
}

func (r *assessmentRepository) Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	updated := a.Copy()
	updated.Derive()
	rec := toAssessmentRecord(updated)

	res := r.db.WithContext(ctx).Model(&assessmentRecord{}).Where("id = ?", rec.ID).
		Select("*").Omit("id", "created_at").Updates(rec)
	if res.Error != nil {
		return nil, goerr.Wrap(res.Error, "failed to update assessment", goerr.V("id", rec.ID))
	}
	if res.RowsAffected == 0 {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", rec.ID))
	}
	return r.Get(ctx, a.ID)
}
