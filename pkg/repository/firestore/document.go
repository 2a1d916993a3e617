package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type documentRepository struct {
	collections
}

func (r *documentRepository) documents() *firestore.CollectionRef {
	return r.collection(documentsCollection)
}

func (r *documentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	doc := toDocumentDoc(d)
	if doc.ID == "" {
		doc.ID = string(model.NewDocumentID())
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	doc.Version = 1

	if _, err := r.documents().Doc(doc.ID).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "document already exists", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	snap, err := r.documents().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	var doc documentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *documentRepository) listBy(ctx context.Context, field, value string) ([]*model.Document, error) {
	iter := r.documents().Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	docs := make([]*model.Document, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V(field, value))
		}

		var doc documentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("doc_id", snap.Ref.ID))
		}
		docs = append(docs, doc.toModel())
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *documentRepository) ListByCase(ctx context.Context, caseID model.CaseID) ([]*model.Document, error) {
	return r.listBy(ctx, "case_id", string(caseID))
}

func (r *documentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Document, error) {
	return r.listBy(ctx, "user_id", string(userID))
}

func (r *documentRepository) Update(ctx context.Context, d *model.Document) (*model.Document, error) {
	doc := toDocumentDoc(d)
	ref := r.documents().Doc(doc.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", doc.ID))
			}
			return goerr.Wrap(err, "failed to get document", goerr.V("id", doc.ID))
		}

		var existing documentDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode document", goerr.V("id", doc.ID))
		}
		if existing.Version != d.Version {
			return goerr.Wrap(ErrConflict, "document version mismatch",
				goerr.V("id", doc.ID), goerr.V("expected", d.Version), goerr.V("actual", existing.Version))
		}

		doc.Version = existing.Version + 1
		doc.CreatedAt = existing.CreatedAt
		return tx.Set(ref, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}
