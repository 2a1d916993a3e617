package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type caseRepository struct {
	mu    sync.RWMutex
	cases map[model.CaseID]*model.Case
}

func newCaseRepository() *caseRepository {
	return &caseRepository{
		cases: make(map[model.CaseID]*model.Case),
	}
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "case already exists", goerr.V("id", c.ID))
	}

	now := time.Now().UTC()
	created := c.Copy()
	created.Version = 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	r.cases[created.ID] = created
	return created.Copy(), nil
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cases[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
	}
	return c.Copy(), nil
}

func (r *caseRepository) List(ctx context.Context, opts ...interfaces.ListCaseOption) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListCaseConfig(opts...)

	cases := make([]*model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		if cfg.Match(c) {
			cases = append(cases, c.Copy())
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID > cases[j].ID
		}
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})

	if limit := cfg.Limit(); limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}
	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.cases[c.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", c.ID))
	}
	if existing.Version != c.Version {
		return nil, goerr.Wrap(ErrConflict, "case version mismatch",
			goerr.V("id", c.ID), goerr.V("expected", c.Version), goerr.V("actual", existing.Version))
	}

	updated := c.Copy()
	updated.Version = existing.Version + 1
	updated.CreatedAt = existing.CreatedAt

	r.cases[c.ID] = updated
	return updated.Copy(), nil
}
