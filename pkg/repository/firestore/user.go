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

type userRepository struct {
	collections
}

// userEmailDoc reserves an email address for one user
type userEmailDoc struct {
	UserID string `firestore:"user_id"`
}

func (r *userRepository) users() *firestore.CollectionRef {
	return r.collection(usersCollection)
}

func (r *userRepository) emails() *firestore.CollectionRef {
	return r.collection(userEmailsCollection)
}

func (r *userRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	doc := toUserDoc(u)
	doc.Email = model.NormalizeEmail(u.Email)
	if doc.ID == "" {
		doc.ID = string(model.NewUserID())
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	userRef := r.users().Doc(doc.ID)
	emailRef := r.emails().Doc(doc.Email)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", doc.Email))
		} else if !isNotFound(err) {
			return goerr.Wrap(err, "failed to check email", goerr.V("email", doc.Email))
		}
		if err := tx.Create(userRef, doc); err != nil {
			return goerr.Wrap(err, "failed to create user", goerr.V("id", doc.ID))
		}
		return tx.Set(emailRef, &userEmailDoc{UserID: doc.ID})
	})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	snap, err := r.users().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	snap, err := r.emails().Doc(email).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user email", goerr.V("email", email))
	}

	var ref userEmailDoc
	if err := snap.DataTo(&ref); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user email", goerr.V("email", email))
	}
	return r.Get(ctx, model.UserID(ref.UserID))
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.users().Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", snap.Ref.ID))
		}
		users = append(users, doc.toModel())
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	doc := toUserDoc(u)
	doc.Email = model.NormalizeEmail(u.Email)
	doc.UpdatedAt = time.Now().UTC()

	userRef := r.users().Doc(doc.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(userRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", doc.ID))
			}
			return goerr.Wrap(err, "failed to get user", goerr.V("id", doc.ID))
		}
		var existing userDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode user", goerr.V("id", doc.ID))
		}
		doc.CreatedAt = existing.CreatedAt

		if existing.Email != doc.Email {
			emailRef := r.emails().Doc(doc.Email)
			if _, err := tx.Get(emailRef); err == nil {
				return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", doc.Email))
			} else if !isNotFound(err) {
				return goerr.Wrap(err, "failed to check email", goerr.V("email", doc.Email))
			}
			if err := tx.Delete(r.emails().Doc(existing.Email)); err != nil {
				return goerr.Wrap(err, "failed to release email", goerr.V("email", existing.Email))
			}
			if err := tx.Set(emailRef, &userEmailDoc{UserID: doc.ID}); err != nil {
				return goerr.Wrap(err, "failed to reserve email", goerr.V("email", doc.Email))
			}
		}
		return tx.Set(userRef, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}
