package usecase_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/repository/memory"
	"github.com/optimatax/reliefdesk/pkg/service/event"
	"github.com/optimatax/reliefdesk/pkg/service/storage"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	repo   interfaces.Repository
	blob   *storage.Memory
	uc     *usecase.UseCases
	client *model.Actor
	other  *model.Actor
	pro    *model.Actor
	admin  *model.Actor
}

func newUser(t *testing.T, repo interfaces.Repository, email string, role types.Role) *model.Actor {
	t.Helper()
	u, err := repo.User().Create(context.Background(), &model.User{
		ID:    model.NewUserID(),
		Email: email,
		Name:  email,
		Role:  role,
	})
	gt.NoError(t, err).Required()
	return u.Actor()
}

func setupWithRepo(t *testing.T, repo interfaces.Repository, opts ...usecase.Option) *fixture {
	t.Helper()
	blob := storage.NewMemory()
	dispatcher := event.New(repo, event.WithSync(), event.WithClock(func() time.Time { return fixedNow }))

	base := []usecase.Option{
		usecase.WithPublisher(dispatcher),
		usecase.WithBlobStorage(blob),
		usecase.WithClock(func() time.Time { return fixedNow }),
		usecase.WithInlineProcessing(),
	}
	return &fixture{
		repo:   repo,
		blob:   blob,
		uc:     usecase.New(repo, append(base, opts...)...),
		client: newUser(t, repo, "client@example.com", types.RoleClient),
		other:  newUser(t, repo, "other@example.com", types.RoleClient),
		pro:    newUser(t, repo, "pro@example.com", types.RoleTaxProfessional),
		admin:  newUser(t, repo, "admin@example.com", types.RoleAdmin),
	}
}

func setup(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	return setupWithRepo(t, memory.New(), opts...)
}

func (f *fixture) createCase(t *testing.T, program types.ProgramType) *model.Case {
	t.Helper()
	c, err := f.uc.Case.CreateCase(context.Background(), f.client, usecase.CreateCaseInput{
		Program:   program,
		TotalDebt: decimal.NewFromInt(45000),
		TaxYears:  []int{2023, 2021, 2023},
		Priority:  types.CasePriorityHigh,
	})
	gt.NoError(t, err).Required()
	return c
}

// conflictRepository makes the first case updates fail with a version conflict
type conflictRepository struct {
	*memory.Memory
	caseRepo *conflictCaseRepository
}

type conflictCaseRepository struct {
	interfaces.CaseRepository
	remaining atomic.Int32
}

func newConflictRepository(failures int32) *conflictRepository {
	m := memory.New()
	r := &conflictRepository{
		Memory:   m,
		caseRepo: &conflictCaseRepository{CaseRepository: m.Case()},
	}
	r.caseRepo.remaining.Store(failures)
	return r
}

func (r *conflictRepository) Case() interfaces.CaseRepository {
	return r.caseRepo
}

func (r *conflictCaseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	if r.remaining.Add(-1) >= 0 {
		return nil, interfaces.ErrConflict
	}
	return r.CaseRepository.Update(ctx, c)
}
