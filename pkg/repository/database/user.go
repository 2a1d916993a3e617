package database

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	rec := toUserRecord(u)
	rec.Email = model.NormalizeEmail(u.Email)
	if rec.ID == "" {
		rec.ID = string(model.NewUserID())
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRecord{}).Where("email = ? OR id = ?", rec.Email, rec.ID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to check existing user")
		}
		if count > 0 {
			return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", rec.Email))
		}
		if err := tx.Create(rec).Error; err != nil {
			if isDuplicate(err) {
				return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", rec.Email))
			}
			return goerr.Wrap(err, "failed to create user", goerr.V("id", rec.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user by email", goerr.V("email", email))
	}
	return rec.toModel(), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	users := make([]*model.User, 0, len(recs))
	for i := range recs {
		users = append(users, recs[i].toModel())
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	rec := toUserRecord(u)
	rec.Email = model.NormalizeEmail(u.Email)
	rec.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRecord{}).Where("email = ? AND id <> ?", rec.Email, rec.ID).Count(&count).Error; err != nil {
			return goerr.Wrap(err, "failed to check existing email")
		}
		if count > 0 {
			return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", rec.Email))
		}

		res := tx.Model(&userRecord{}).Where("id = ?", rec.ID).
			Select("*").Omit("id", "created_at").Updates(rec)
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to update user", goerr.V("id", rec.ID))
		}
		if res.RowsAffected == 0 {
			return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", rec.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, u.ID)
}
