package database

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type caseRepository struct {
	db *gorm.DB
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	rec := toCaseRecord(c)
	rec.Version = 1
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&caseRecord{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to check existing case", goerr.V("id", rec.ID))
		}
		if count > 0 {
			return goerr.Wrap(ErrAlreadyExists, "case already exists", goerr.V("id", rec.ID))
		}
		if err := tx.Create(rec).Error; err != nil {
			if isDuplicate(err) {
				return goerr.Wrap(ErrAlreadyExists, "case already exists", goerr.V("id", rec.ID))
			}
			return goerr.Wrap(err, "failed to create case", goerr.V("id", rec.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	var rec caseRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *caseRepository) List(ctx context.Context, opts ...interfaces.ListCaseOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListCaseConfig(opts...)

	q := r.db.WithContext(ctx).Model(&caseRecord{})
	if status := cfg.Status(); status != nil {
		q = q.Where("status = ?", string(*status))
	}
	if owner := cfg.OwnerID(); owner != "" {
		q = q.Where("owner_id = ?", string(owner))
	}
	if user := cfg.AccessibleBy(); user != "" {
		q = q.Where("(owner_id = ? OR assigned_to = ?)", string(user), string(user))
	}
	if before := cfg.DeadlineBefore(); before != nil {
		q = q.Where("next_deadline IS NOT NULL AND next_deadline < ?", before.UTC())
	}
	if limit := cfg.Limit(); limit > 0 {
		q = q.Limit(limit)
	}

	var recs []caseRecord
	if err := q.Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list cases")
	}

	cases := make([]*model.Case, 0, len(recs))
	for i := range recs {
		cases = append(cases, recs[i].toModel())
	}
	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	rec := toCaseRecord(c)
	rec.Version = c.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&caseRecord{}).Where("id = ? AND version = ?", rec.ID, c.Version).
			Select("*").Omit("id", "created_at").Updates(rec)
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to update case", goerr.V("id", rec.ID))
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var current caseRecord
		if err := tx.Select("version").Where("id = ?", rec.ID).First(&current).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", rec.ID))
			}
			return goerr.Wrap(err, "failed to get case version", goerr.V("id", rec.ID))
		}
		return goerr.Wrap(ErrConflict, "case version mismatch",
			goerr.V("id", rec.ID), goerr.V("expected", c.Version), goerr.V("actual", current.Version))
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, c.ID)
}
