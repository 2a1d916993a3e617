package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

type ActivityUseCase struct {
	repo interfaces.Repository
}

func NewActivityUseCase(repo interfaces.Repository) *ActivityUseCase {
	return &ActivityUseCase{repo: repo}
}

// ListByCase returns the audit trail of a case, newest first. Only staff may
// read it.
func (uc *ActivityUseCase) ListByCase(ctx context.Context, actor *model.Actor, caseID model.CaseID, limit int) ([]*model.Activity, error) {
	c, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, caseID))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}
	if !actor.CanAccessCase(c) {
		return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, caseID))
	}
	if !actor.Can(types.ActionViewActivity) {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot view activities",
			goerr.V(CaseIDKey, caseID), goerr.V(model.ActionKey, types.ActionViewActivity))
	}

	list, err := uc.repo.Activity().ListByCase(ctx, caseID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V(CaseIDKey, caseID))
	}
	return list, nil
}

// ListMine returns the activities the actor performed, newest first
func (uc *ActivityUseCase) ListMine(ctx context.Context, actor *model.Actor, limit int) ([]*model.Activity, error) {
	list, err := uc.repo.Activity().ListByActor(ctx, actor.UserID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V(UserIDKey, actor.UserID))
	}
	return list, nil
}
