package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[model.AssessmentID]*model.Assessment
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[model.AssessmentID]*model.Assessment),
	}
}

func (r *assessmentRepository) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := a.Copy()
	if created.ID == "" {
		created.ID = model.NewAssessmentID()
	}
	if _, exists := r.assessments[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "assessment already exists", goerr.V("id", created.ID))
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}
	created.Derive()

	r.assessments[created.ID] = created
	return created.Copy(), nil
}

func (r *assessmentRepository) Get(ctx context.Context, id model.AssessmentID) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.assessments[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", id))
	}
	return a.Copy(), nil
}

func (r *assessmentRepository) GetLatestByCase(ctx context.Context, caseID model.CaseID) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Assessment
	for _, a := range r.assessments {
		if a.CaseID != caseID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("case_id", caseID))
	}
	return latest.Copy(), nil
}

func (r *assessmentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assessment
	for _, a := range r.assessments {
		if a.UserID == userID {
			result = append(result, a.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *assessmentRepository) Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.assessments[a.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", a.ID))
	}

	updated := a.Copy()
	updated.CreatedAt = existing.CreatedAt
	updated.Derive()

	r.assessments[a.ID] = updated
	return updated.Copy(), nil
}
