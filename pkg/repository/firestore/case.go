package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type caseRepository struct {
	collections
}

func (r *caseRepository) cases() *firestore.CollectionRef {
	return r.collection(casesCollection)
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	doc := toCaseDoc(c)
	doc.Version = 1
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	if _, err := r.cases().Doc(doc.ID).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "case already exists", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create case", goerr.V("id", doc.ID))
	}
	return doc.toModel()
}

func (r *caseRepository) Get(ctx context.Context, id model.CaseID) (*model.Case, error) {
	snap, err := r.cases().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("id", id))
	}
	return decodeCase(snap)
}

func decodeCase(snap *firestore.DocumentSnapshot) (*model.Case, error) {
	var doc caseDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel()
}

func (r *caseRepository) List(ctx context.Context, opts ...interfaces.ListCaseOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListCaseConfig(opts...)

	// Single-field filters use automatic indexes; the rest is applied by Match.
	q := r.cases().Query
	if status := cfg.Status(); status != nil {
		q = q.Where("status", "==", string(*status))
	}
	if owner := cfg.OwnerID(); owner != "" {
		q = q.Where("owner_id", "==", string(owner))
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var cases []*model.Case
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cases")
		}

		c, err := decodeCase(snap)
		if err != nil {
			return nil, err
		}
		if cfg.Match(c) {
			cases = append(cases, c)
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
	doc := toCaseDoc(c)
	ref := r.cases().Doc(doc.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", doc.ID))
			}
			return goerr.Wrap(err, "failed to get case", goerr.V("id", doc.ID))
		}

		var existing caseDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode case", goerr.V("id", doc.ID))
		}
		if existing.Version != c.Version {
			return goerr.Wrap(ErrConflict, "case version mismatch",
				goerr.V("id", doc.ID), goerr.V("expected", c.Version), goerr.V("actual", existing.Version))
		}

		doc.Version = existing.Version + 1
		doc.CreatedAt = existing.CreatedAt
		return tx.Set(ref, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}
