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

type assessmentRepository struct {
	collections
}

func (r *assessmentRepository) assessments() *firestore.CollectionRef {
	return r.collection(assessmentsCollection)
}

func (r *assessmentRepository) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	created := a.Copy()
	if created.ID == "" {
		created.ID = model.NewAssessmentID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}
	created.Derive()

	doc, err := toAssessmentDoc(created)
	if err != nil {
		return nil, err
	}
	if _, err := r.assessments().Doc(doc.ID).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "assessment already exists", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V("id", doc.ID))
	}
	return created, nil
}

func decodeAssessment(snap *firestore.DocumentSnapshot) (*model.Assessment, error) {
	var doc assessmentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assessment", goerr.V("doc_id", snap.Ref.ID))
	}
	return doc.toModel()
}

func (r *assessmentRepository) Get(ctx context.Context, id model.AssessmentID) (*model.Assessment, error) {
	snap, err := r.assessments().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("id", id))
	}
	return decodeAssessment(snap)
}

func (r *assessmentRepository) listBy(ctx context.Context, field, value string) ([]*model.Assessment, error) {
	iter := r.assessments().Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	var result []*model.Assessment
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assessments", goerr.V(field, value))
		}

		a, err := decodeAssessment(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *assessmentRepository) GetLatestByCase(ctx context.Context, caseID model.CaseID) (*model.Assessment, error) {
	result, err := r.listBy(ctx, "case_id", string(caseID))
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("case_id", caseID))
	}
	return result[0], nil
}

func (r *assessmentRepository) ListByUser(ctx context.Context, userID model.UserID) ([]*model.Assessment, error) {
	return r.listBy(ctx, "user_id", string(userID))
}

func (r *assessmentRepository) Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	updated := a.Copy()
	updated.Derive()
	ref := r.assessments().Doc(string(updated.ID))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("id", updated.ID))
			}
			return goerr.Wrap(err, "failed to get assessment", goerr.V("id", updated.ID))
		}
		existing, err := decodeAssessment(snap)
		if err != nil {
			return err
		}
		updated.CreatedAt = existing.CreatedAt

		doc, err := toAssessmentDoc(updated)
		if err != nil {
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
