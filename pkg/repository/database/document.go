package database

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

func (r *documentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	rec := toDocumentRecord(d)
	if rec.ID == "" {
		rec.ID = string(model.NewDocumentID())
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	rec.Version = 1

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isDuplicate(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "document already exists", goerr.V("id", rec.ID))
		}
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("id", rec.ID))
	}
	return rec.toModel(), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	var rec documentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *documentRepository) list(ctx context.Context, column, value string) ([]*model.Document, error) {
	var recs []documentRecord
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).
		Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V(column, value))
	}

	docs := make([]*model.Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, recs[i].toModel())
	}
	return docs, nil
}

func (r *documentRepository) ListByCase(ctx context.Context, caseID model.CaseID) ([]*model.Document, error) {
	return r.list(ctx, "case_id", string(caseID))
}

func (r *documentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Document, error) {
	return r.list(ctx, "user_id", string(userID))
}

func (r *documentRepository) Update(ctx context.Context, d *model.Document) (*model.Document, error) {
	rec := toDocumentRecord(d)
	rec.Version = d.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&documentRecord{}).Where("id = ? AND version = ?", rec.ID, d.Version).
			Select("*").Omit("id", "created_at").Updates(rec)
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to update document", goerr.V("id", rec.ID))
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var current documentRecord
		if err := tx.Select("version").Where("id = ?", rec.ID).First(&current).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", rec.ID))
			}
			return goerr.Wrap(err, "failed to get document version", goerr.V("id", rec.ID))
		}
		return goerr.Wrap(ErrConflict, "document version mismatch",
			goerr.V("id", rec.ID), goerr.V("expected", d.Version), goerr.V("actual", current.Version))
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, d.ID)
}
