package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

type documentRepository struct {
	mu        sync.RWMutex
	documents map[model.DocumentID]*model.Document
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		documents: make(map[model.DocumentID]*model.Document),
	}
}

func (r *documentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := d.Copy()
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	if _, exists := r.documents[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "document already exists", goerr.V("id", created.ID))
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}
	created.Version = 1

	r.documents[created.ID] = created
	return created.Copy(), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.documents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
	}
	return d.Copy(), nil
}

func (r *documentRepository) list(match func(d *model.Document) bool) []*model.Document {
	docs := make([]*model.Document, 0)
	for _, d := range r.documents {
		if match(d) {
			docs = append(docs, d.Copy())
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

func (r *documentRepository) ListByCase(ctx context.Context, caseID model.CaseID) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(d *model.Document) bool { return d.CaseID == caseID }), nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(d *model.Document) bool { return d.UserID == userID }), nil
}

func (r *documentRepository) Update(ctx context.Context, d *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.documents[d.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", d.ID))
	}
	if existing.Version != d.Version {
		return nil, goerr.Wrap(ErrConflict, "document version mismatch",
			goerr.V("id", d.ID), goerr.V("expected", d.Version), goerr.V("actual", existing.Version))
	}

	updated := d.Copy()
	updated.Version = existing.Version + 1
	updated.CreatedAt = existing.CreatedAt
	r.documents[d.ID] = updated
	return updated.Copy(), nil
}
