package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CaseUseCase struct {
	repo       interfaces.Repository
	publisher  interfaces.EventPublisher
	policy     *config.Policy
	now        func() time.Time
	generateID func(time.Time) model.CaseID
}

func NewCaseUseCase(repo interfaces.Repository, publisher interfaces.EventPublisher, policy *config.Policy, now func() time.Time) *CaseUseCase {
	return &CaseUseCase{
		repo:       repo,
		publisher:  publisher,
		policy:     policy,
		now:        now,
		generateID: model.GenerateCaseID,
	}
}

// CreateCaseInput is the client supplied data of a new case
type CreateCaseInput struct {
	OwnerID      model.UserID // Defaults to the actor
	Program      types.ProgramType
	TotalDebt    decimal.Decimal
	TaxYears     []int
	Priority     types.CasePriority
	NextDeadline *time.Time
}

// CaseSummary is a case together with the data shown on its overview page
type CaseSummary struct {
	Case         *model.Case
	Progress     int
	Overdue      bool
	Requirements *model.RequirementCheck
	Documents    []*model.Document
	Assessment   *model.Assessment
	Allowed      []types.CaseStatus
}

func (uc *CaseUseCase) CreateCase(ctx context.Context, actor *model.Actor, in CreateCaseInput) (*model.Case, error) {
	if !actor.Can(types.ActionCreateCase) {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot create cases",
			goerr.V(model.ActionKey, types.ActionCreateCase))
	}

	owner := actor.UserID
	if in.OwnerID != "" && in.OwnerID != actor.UserID {
		if !actor.Can(types.ActionManageUsers) {
			return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot create cases for other users",
				goerr.V(UserIDKey, in.OwnerID))
		}
		if _, err := uc.repo.User().Get(ctx, in.OwnerID); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(model.ErrInvalidInput, "case owner does not exist", goerr.V(UserIDKey, in.OwnerID))
			}
			return nil, goerr.Wrap(err, "failed to get case owner", goerr.V(UserIDKey, in.OwnerID))
		}
		owner = in.OwnerID
	}

	now := uc.now()
	for attempt := 1; attempt <= uc.policy.CaseIDAttempts; attempt++ {
		c := model.NewCase(uc.generateID(now), owner, in.Program, in.TotalDebt, in.TaxYears, in.Priority, now)
		if in.NextDeadline != nil {
			deadline := in.NextDeadline.UTC()
			c.NextDeadline = &deadline
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}

		created, err := uc.repo.Case().Create(ctx, c)
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create case")
		}

		uc.publisher.Publish(ctx, model.NewCaseEvent(types.EventCaseCreated, actor.UserID, created, now))
		return created, nil
	}

	return nil, goerr.Wrap(interfaces.ErrConflict, "could not allocate a unique case ID",
		goerr.V(AttemptsKey, uc.policy.CaseIDAttempts))
}

// getVisibleCase returns the case when the actor may see it. Invisible cases
// are reported as not found.
func (uc *CaseUseCase) getVisibleCase(ctx context.Context, actor *model.Actor, id model.CaseID) (*model.Case, error) {
	c, err := uc.repo.Case().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, id))
	}
	if !actor.CanAccessCase(c) {
		return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
	}
	return c, nil
}

func (uc *CaseUseCase) GetCase(ctx context.Context, actor *model.Actor, id model.CaseID) (*model.Case, error) {
	return uc.getVisibleCase(ctx, actor, id)
}

// GetCaseSummary loads the case and its related data concurrently
func (uc *CaseUseCase) GetCaseSummary(ctx context.Context, actor *model.Actor, id model.CaseID) (*CaseSummary, error) {
	c, err := uc.getVisibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	summary := &CaseSummary{
		Case:     c,
		Progress: model.CalculateProgress(c),
		Overdue:  c.IsOverdue(uc.now()),
		Allowed:  c.AllowedTransitions(),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		docs, err := uc.repo.Document().ListByCase(egCtx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to list case documents", goerr.V(CaseIDKey, id))
		}
		summary.Documents = activeDocuments(docs)
		summary.Requirements = model.CheckRequirements(id, c.Program, docs)
		return nil
	})
	eg.Go(func() error {
		a, err := uc.repo.Assessment().GetLatestByCase(egCtx, id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil
			}
			return goerr.Wrap(err, "failed to get case assessment", goerr.V(CaseIDKey, id))
		}
		summary.Assessment = a
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}

// ListCases returns the cases visible to the actor, newest first
func (uc *CaseUseCase) ListCases(ctx context.Context, actor *model.Actor, status *types.CaseStatus, limit int) ([]*model.Case, error) {
	var opts []interfaces.ListCaseOption
	if !actor.Can(types.ActionViewAllCases) {
		opts = append(opts, interfaces.WithAccessibleBy(actor.UserID))
	}
	if status != nil {
		if !status.IsValid() {
			return nil, goerr.Wrap(model.ErrInvalidInput, "invalid case status", goerr.V("status", *status))
		}
		opts = append(opts, interfaces.WithStatus(*status))
	}
	if limit > 0 {
		opts = append(opts, interfaces.WithLimit(limit))
	}

	cases, err := uc.repo.Case().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cases")
	}
	return cases, nil
}

// TransitionCase moves the case to a new status. Concurrent modifications
// are retried with the latest version.
func (uc *CaseUseCase) TransitionCase(ctx context.Context, actor *model.Actor, id model.CaseID, to types.CaseStatus, note string) (*model.Case, error) {
	return uc.modifyCase(ctx, actor, id, func(c *model.Case) (*model.Event, error) {
		return c.Transition(to, actor, uc.policy.TransitionPolicy, note, uc.now())
	})
}

// AssignCase delegates the case to a staff member
func (uc *CaseUseCase) AssignCase(ctx context.Context, actor *model.Actor, id model.CaseID, reviewerID model.UserID) (*model.Case, error) {
	reviewer, err := uc.repo.User().Get(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(model.ErrInvalidInput, "assignee does not exist", goerr.V(UserIDKey, reviewerID))
		}
		return nil, goerr.Wrap(err, "failed to get assignee", goerr.V(UserIDKey, reviewerID))
	}

	return uc.modifyCase(ctx, actor, id, func(c *model.Case) (*model.Event, error) {
		return c.Assign(reviewer, actor, uc.now())
	})
}

// SetDeadline replaces the next deadline of the case. A nil deadline clears it.
func (uc *CaseUseCase) SetDeadline(ctx context.Context, actor *model.Actor, id model.CaseID, deadline *time.Time) (*model.Case, error) {
	if !actor.Can(types.ActionTransitionCase) {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot schedule cases", goerr.V(CaseIDKey, id))
	}
	if deadline != nil {
		d := deadline.UTC()
		deadline = &d
	}

	return uc.modifyCase(ctx, actor, id, func(c *model.Case) (*model.Event, error) {
		c.SetDeadline(deadline, uc.now())
		return nil, nil
	})
}

// CheckRequirements computes the document completeness of the case and
// refreshes its DocumentsComplete flag
func (uc *CaseUseCase) CheckRequirements(ctx context.Context, actor *model.Actor, id model.CaseID) (*model.RequirementCheck, error) {
	if _, err := uc.getVisibleCase(ctx, actor, id); err != nil {
		return nil, err
	}
	return refreshRequirements(ctx, uc.repo, id, uc.policy.TransitionRetries)
}

func (uc *CaseUseCase) modifyCase(ctx context.Context, actor *model.Actor, id model.CaseID, modify func(c *model.Case) (*model.Event, error)) (*model.Case, error) {
	var ev *model.Event
	updated, err := updateCaseWithRetry(ctx, uc.repo, id, uc.policy.TransitionRetries, func(c *model.Case) (bool, error) {
		if !actor.CanAccessCase(c) {
			return false, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
		}
		var err error
		ev, err = modify(c)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		uc.publisher.Publish(ctx, ev)
	}
	return updated, nil
}

// updateCaseWithRetry applies apply to the latest version of the case and
// saves it. On a version conflict the case is re-read and apply runs again.
// When apply reports no change the case is returned without saving.
func updateCaseWithRetry(ctx context.Context, repo interfaces.Repository, id model.CaseID, retries int, apply func(c *model.Case) (bool, error)) (*model.Case, error) {
	for attempt := 0; attempt <= retries; attempt++ {
		c, err := repo.Case().Get(ctx, id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
			}
			return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, id))
		}

		changed, err := apply(c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}

		updated, err := repo.Case().Update(ctx, c)
		if errors.Is(err, interfaces.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to update case", goerr.V(CaseIDKey, id))
		}
		return updated, nil
	}

	return nil, goerr.Wrap(interfaces.ErrConflict, "case was modified concurrently",
		goerr.V(CaseIDKey, id), goerr.V(AttemptsKey, retries+1))
}

// refreshRequirements recomputes the requirement check and stores the
// DocumentsComplete flag when it changed
func refreshRequirements(ctx context.Context, repo interfaces.Repository, id model.CaseID, retries int) (*model.RequirementCheck, error) {
	var check *model.RequirementCheck
	_, err := updateCaseWithRetry(ctx, repo, id, retries, func(c *model.Case) (bool, error) {
		docs, err := repo.Document().ListByCase(ctx, id)
		if err != nil {
			return false, goerr.Wrap(err, "failed to list case documents", goerr.V(CaseIDKey, id))
		}
		check = model.CheckRequirements(id, c.Program, docs)
		if c.DocumentsComplete == check.Complete {
			return false, nil
		}
		c.DocumentsComplete = check.Complete
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func activeDocuments(docs []*model.Document) []*model.Document {
	out := make([]*model.Document, 0, len(docs))
	for _, d := range docs {
		if d.Status != types.DocumentStatusDeleted {
			out = append(out, d)
		}
	}
	return out
}
