package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

type AssessmentUseCase struct {
	repo      interfaces.Repository
	publisher interfaces.EventPublisher
	now       func() time.Time
}

func NewAssessmentUseCase(repo interfaces.Repository, publisher interfaces.EventPublisher, now func() time.Time) *AssessmentUseCase {
	return &AssessmentUseCase{
		repo:      repo,
		publisher: publisher,
		now:       now,
	}
}

// CreateAssessment starts an assessment, optionally linked to a case. An
// assessment of a case belongs to the case owner.
func (uc *AssessmentUseCase) CreateAssessment(ctx context.Context, actor *model.Actor, caseID model.CaseID) (*model.Assessment, error) {
	if !actor.Can(types.ActionCreateAssessment) {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot create assessments")
	}

	owner := actor.UserID
	if caseID != "" {
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
		owner = c.OwnerID
	}

	created, err := uc.repo.Assessment().Create(ctx, model.NewAssessment(owner, caseID, uc.now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create assessment")
	}
	return created, nil
}

func (uc *AssessmentUseCase) GetAssessment(ctx context.Context, actor *model.Actor, id model.AssessmentID) (*model.Assessment, error) {
	return uc.getVisibleAssessment(ctx, actor, id)
}

// GetLatestForCase returns the most recent assessment of a visible case
func (uc *AssessmentUseCase) GetLatestForCase(ctx context.Context, actor *model.Actor, caseID model.CaseID) (*model.Assessment, error) {
	c, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil || !actor.CanAccessCase(c) {
		if err == nil || errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, caseID))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	a, err := uc.repo.Assessment().GetLatestByCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssessmentNotFound, "case has no assessment", goerr.V(CaseIDKey, caseID))
		}
		return nil, goerr.Wrap(err, "failed to get case assessment", goerr.V(CaseIDKey, caseID))
	}
	return a, nil
}

// ListMine returns the actor's assessments, newest first
func (uc *AssessmentUseCase) ListMine(ctx context.Context, actor *model.Actor) ([]*model.Assessment, error) {
	list, err := uc.repo.Assessment().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments", goerr.V(UserIDKey, actor.UserID))
	}
	return list, nil
}

// SubmitStep records the answers of one step. Submitting the last missing
// step completes the assessment and evaluates eligibility.
func (uc *AssessmentUseCase) SubmitStep(ctx context.Context, actor *model.Actor, id model.AssessmentID, step types.AssessmentStep, in model.StepInput) (*model.Assessment, error) {
	a, err := uc.getVisibleAssessment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	completed, err := a.SubmitStep(step, in, now)
	if err != nil {
		return nil, err
	}

	updated, err := uc.repo.Assessment().Update(ctx, a)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save assessment", goerr.V(AssessmentIDKey, id))
	}

	if completed {
		uc.publisher.Publish(ctx, model.NewAssessmentEvent(types.EventAssessmentCompleted, actor.UserID, updated, now))
	}
	return updated, nil
}

// Evaluate runs the eligibility engine on the answers given so far. It does
// not complete the assessment and emits no event.
func (uc *AssessmentUseCase) Evaluate(ctx context.Context, actor *model.Actor, id model.AssessmentID) (*model.Assessment, error) {
	a, err := uc.getVisibleAssessment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	a.Reevaluate(uc.now())

	updated, err := uc.repo.Assessment().Update(ctx, a)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save assessment", goerr.V(AssessmentIDKey, id))
	}
	return updated, nil
}

// getVisibleAssessment returns the assessment when the actor owns it or may
// see its case. Invisible assessments are reported as not found.
func (uc *AssessmentUseCase) getVisibleAssessment(ctx context.Context, actor *model.Actor, id model.AssessmentID) (*model.Assessment, error) {
	a, err := uc.repo.Assessment().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssessmentNotFound, "assessment not found", goerr.V(AssessmentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V(AssessmentIDKey, id))
	}

	if a.UserID == actor.UserID || actor.Can(types.ActionViewAllCases) {
		return a, nil
	}
	if a.CaseID != "" {
		c, err := uc.repo.Case().Get(ctx, a.CaseID)
		if err == nil && actor.CanAccessCase(c) {
			return a, nil
		}
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to get assessment case", goerr.V(AssessmentIDKey, id))
		}
	}
	return nil, goerr.Wrap(ErrAssessmentNotFound, "assessment not found", goerr.V(AssessmentIDKey, id))
}
