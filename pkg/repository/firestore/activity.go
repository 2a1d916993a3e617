package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type activityRepository struct {
	collections
}

func (r *activityRepository) activities() *firestore.CollectionRef {
	return r.collection(activitiesCollection)
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	doc := toActivityDoc(a)
	if doc.ID == "" {
		doc.ID = string(model.NewActivityID())
	}
	if _, err := r.activities().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to create activity", goerr.V("id", doc.ID))
	}
	return nil
}

// listBy requires a composite index of (field, created_at DESC), created by
// the migrate command.
func (r *activityRepository) listBy(ctx context.Context, field, value string, limit int) ([]*model.Activity, error) {
	q := r.activities().Where(field, "==", value).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Activity
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate activities", goerr.V(field, value))
		}

		var doc activityDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode activity", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (r *activityRepository) ListByCase(ctx context.Context, caseID model.CaseID, limit int) ([]*model.Activity, error) {
	return r.listBy(ctx, "case_id", string(caseID), limit)
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID model.UserID, limit int) ([]*model.Activity, error) {
	return r.listBy(ctx, "actor_id", string(actorID), limit)
}
