package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/utils/async"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

var errProcessingSuperseded = errors.New("document left processing")

type DocumentUseCase struct {
	repo      interfaces.Repository
	blob      interfaces.BlobStorage
	publisher interfaces.EventPublisher
	policy    *config.Policy
	now       func() time.Time
	inline    bool
}

func NewDocumentUseCase(repo interfaces.Repository, blob interfaces.BlobStorage, publisher interfaces.EventPublisher, policy *config.Policy, now func() time.Time, inline bool) *DocumentUseCase {
	return &DocumentUseCase{
		repo:      repo,
		blob:      blob,
		publisher: publisher,
		policy:    policy,
		now:       now,
		inline:    inline,
	}
}

// UploadInput is an uploaded file and its declared metadata
type UploadInput struct {
	CaseID      model.CaseID // Optional
	Type        types.DocumentType
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

func (uc *DocumentUseCase) validateUpload(in UploadInput) error {
	if !in.Type.IsValid() {
		return goerr.Wrap(model.ErrInvalidInput, "invalid document type", goerr.V("type", in.Type))
	}
	if strings.TrimSpace(in.FileName) == "" {
		return goerr.Wrap(model.ErrInvalidInput, "file name is required")
	}
	if in.Size <= 0 {
		return goerr.Wrap(model.ErrInvalidInput, "file is empty", goerr.V("file_name", in.FileName))
	}
	if in.Size > uc.policy.MaxUploadSize {
		return goerr.Wrap(model.ErrInvalidInput, "file is too large",
			goerr.V("size", in.Size), goerr.V("max_size", uc.policy.MaxUploadSize))
	}
	if !uc.policy.AllowsContentType(in.ContentType) {
		return goerr.Wrap(model.ErrInvalidInput, "content type is not allowed", goerr.V("content_type", in.ContentType))
	}
	return nil
}

// Upload stores the file content and its metadata. When the metadata cannot
// be saved the stored content is removed again.
func (uc *DocumentUseCase) Upload(ctx context.Context, actor *model.Actor, in UploadInput) (*model.Document, error) {
	if !actor.Can(types.ActionUploadDocument) {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot upload documents")
	}
	if err := uc.validateUpload(in); err != nil {
		return nil, err
	}

	owner := actor.UserID
	if in.CaseID != "" {
		c, err := uc.repo.Case().Get(ctx, in.CaseID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, in.CaseID))
			}
			return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, in.CaseID))
		}
		if !actor.CanAccessCase(c) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, in.CaseID))
		}
		// Documents of a case belong to the taxpayer even when staff upload them.
		owner = c.OwnerID
	}

	now := uc.now()
	doc := &model.Document{
		ID:           model.NewDocumentID(),
		UserID:       owner,
		CaseID:       in.CaseID,
		Type:         in.Type,
		Status:       types.DocumentStatusPending,
		Verification: types.VerificationUnverified,
		FileName:     path.Base(strings.ReplaceAll(in.FileName, "\\", "/")),
		ContentType:  in.ContentType,
		Size:         in.Size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	objectPath := fmt.Sprintf("documents/%s/%s/%s", doc.UserID, doc.ID, doc.FileName)
	locator, err := uc.blob.Put(ctx, objectPath, io.LimitReader(in.Content, uc.policy.MaxUploadSize), interfaces.BlobMetadata{
		ContentType: in.ContentType,
		Size:        in.Size,
		Attributes: map[string]string{
			"document_id":   doc.ID.String(),
			"document_type": doc.Type.String(),
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store document content", goerr.V(DocumentIDKey, doc.ID))
	}
	doc.Locator = locator

	created, err := uc.repo.Document().Create(ctx, doc)
	if err != nil {
		if delErr := uc.blob.Delete(ctx, locator); delErr != nil {
			errutil.Handle(ctx, goerr.Wrap(delErr, "failed to remove orphaned document content",
				goerr.V("locator", locator)), "compensating delete failed")
		}
		return nil, goerr.Wrap(err, "failed to save document", goerr.V(DocumentIDKey, doc.ID))
	}

	uc.publisher.Publish(ctx, model.NewDocumentEvent(types.EventDocumentUploaded, actor.UserID, created, now))

	if uc.inline {
		if processed, err := uc.ProcessDocument(ctx, created.ID); err != nil {
			errutil.Handle(ctx, err, "document processing failed")
		} else {
			created = processed
		}
	} else {
		id := created.ID
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := uc.ProcessDocument(ctx, id)
			return err
		})
	}

	return created, nil
}

// ProcessDocument moves a pending document through processing. A document
// whose content is missing from storage is rejected. When the document is
// rejected or deleted while its content is checked, that change is kept and
// the current document is returned.
func (uc *DocumentUseCase) ProcessDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	doc, err := uc.updateDocumentWithRetry(ctx, id, func(d *model.Document) error {
		return d.StartProcessing(uc.now())
	})
	if err != nil {
		return nil, err
	}

	exists, err := uc.blob.Exists(ctx, doc.Locator)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check document content", goerr.V(DocumentIDKey, id))
	}
	if !exists {
		logging.From(ctx).Warn("document content missing", "document_id", id, "locator", doc.Locator)
	}

	var ev *model.Event
	updated, err := uc.updateDocumentWithRetry(ctx, id, func(d *model.Document) error {
		if d.Status != types.DocumentStatusProcessing {
			return errProcessingSuperseded
		}
		var err error
		if exists {
			ev, err = d.FinishProcessing(uc.now())
		} else {
			ev, err = d.Reject(model.SystemActor, "content is missing from storage", uc.now())
		}
		return err
	})
	if errors.Is(err, errProcessingSuperseded) {
		logging.From(ctx).Info("document changed during processing", "document_id", id)
		return uc.getDocument(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return uc.afterSave(ctx, updated, ev), nil
}

// Verify accepts a processed document
func (uc *DocumentUseCase) Verify(ctx context.Context, actor *model.Actor, id model.DocumentID) (*model.Document, error) {
	if _, err := uc.getVisibleDocument(ctx, actor, id); err != nil {
		return nil, err
	}

	var ev *model.Event
	updated, err := uc.updateDocumentWithRetry(ctx, id, func(d *model.Document) error {
		var err error
		ev, err = d.Verify(actor, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.afterSave(ctx, updated, ev), nil
}

// Reject refuses a document with a reason shown to the taxpayer
func (uc *DocumentUseCase) Reject(ctx context.Context, actor *model.Actor, id model.DocumentID, reason string) (*model.Document, error) {
	if _, err := uc.getVisibleDocument(ctx, actor, id); err != nil {
		return nil, err
	}

	var ev *model.Event
	updated, err := uc.updateDocumentWithRetry(ctx, id, func(d *model.Document) error {
		var err error
		ev, err = d.Reject(actor, strings.TrimSpace(reason), uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.afterSave(ctx, updated, ev), nil
}

// Delete soft-deletes a document. Only its owner or staff may delete it.
func (uc *DocumentUseCase) Delete(ctx context.Context, actor *model.Actor, id model.DocumentID) (*model.Document, error) {
	doc, err := uc.getVisibleDocument(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != actor.UserID && !actor.Role.IsStaff() {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "actor cannot delete the document", goerr.V(DocumentIDKey, id))
	}

	var ev *model.Event
	updated, err := uc.updateDocumentWithRetry(ctx, id, func(d *model.Document) error {
		var err error
		ev, err = d.MarkDeleted(actor, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.afterSave(ctx, updated, ev), nil
}

func (uc *DocumentUseCase) GetDocument(ctx context.Context, actor *model.Actor, id model.DocumentID) (*model.Document, error) {
	return uc.getVisibleDocument(ctx, actor, id)
}

// ListByCase returns the documents of a visible case, excluding deleted ones
func (uc *DocumentUseCase) ListByCase(ctx context.Context, actor *model.Actor, caseID model.CaseID) ([]*model.Document, error) {
	c, err := uc.repo.Case().Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, caseID))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}
	if !actor.CanAccessCase(c) {
		return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, caseID))
	}

	docs, err := uc.repo.Document().ListByCase(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V(CaseIDKey, caseID))
	}
	return activeDocuments(docs), nil
}

// ListMine returns the actor's own documents, excluding deleted ones
func (uc *DocumentUseCase) ListMine(ctx context.Context, actor *model.Actor) ([]*model.Document, error) {
	docs, err := uc.repo.Document().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V(UserIDKey, actor.UserID))
	}
	return activeDocuments(docs), nil
}

// DownloadURL returns a time-limited URL of the document content
func (uc *DocumentUseCase) DownloadURL(ctx context.Context, actor *model.Actor, id model.DocumentID) (string, time.Time, error) {
	doc, err := uc.getVisibleDocument(ctx, actor, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if doc.Status == types.DocumentStatusDeleted {
		return "", time.Time{}, goerr.Wrap(ErrDocumentNotFound, "document is deleted", goerr.V(DocumentIDKey, id))
	}

	ttl := uc.policy.SignedURLTTL
	url, err := uc.blob.SignedURL(ctx, doc.Locator, ttl)
	if err != nil {
		return "", time.Time{}, goerr.Wrap(err, "failed to sign document URL", goerr.V(DocumentIDKey, id))
	}
	return url, uc.now().Add(ttl), nil
}

func (uc *DocumentUseCase) getDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrDocumentNotFound, "document not found", goerr.V(DocumentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V(DocumentIDKey, id))
	}
	return doc, nil
}

// getVisibleDocument returns the document when the actor may see it, directly
// or through its case. Invisible documents are reported as not found.
func (uc *DocumentUseCase) getVisibleDocument(ctx context.Context, actor *model.Actor, id model.DocumentID) (*model.Document, error) {
	doc, err := uc.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	var c *model.Case
	if doc.CaseID != "" {
		c, err = uc.repo.Case().Get(ctx, doc.CaseID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to get document case", goerr.V(DocumentIDKey, id))
		}
	}
	if !actor.CanAccessDocument(doc, c) {
		return nil, goerr.Wrap(ErrDocumentNotFound, "document not found", goerr.V(DocumentIDKey, id))
	}
	return doc, nil
}

// updateDocumentWithRetry loads the document, applies the change and saves
// it. On a version conflict the document is reloaded and the change runs
// again against the latest state.
func (uc *DocumentUseCase) updateDocumentWithRetry(ctx context.Context, id model.DocumentID, apply func(d *model.Document) error) (*model.Document, error) {
	retries := uc.policy.TransitionRetries
	for attempt := 0; attempt <= retries; attempt++ {
		doc, err := uc.getDocument(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := apply(doc); err != nil {
			return nil, err
		}

		updated, err := uc.repo.Document().Update(ctx, doc)
		if errors.Is(err, interfaces.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to save document", goerr.V(DocumentIDKey, id))
		}
		return updated, nil
	}

	return nil, goerr.Wrap(interfaces.ErrConflict, "document was modified concurrently",
		goerr.V(DocumentIDKey, id), goerr.V(AttemptsKey, retries+1))
}

// afterSave refreshes the requirement completion of the document's case and
// publishes the event
func (uc *DocumentUseCase) afterSave(ctx context.Context, updated *model.Document, ev *model.Event) *model.Document {
	if updated.CaseID != "" {
		if _, err := refreshRequirements(ctx, uc.repo, updated.CaseID, uc.policy.TransitionRetries); err != nil {
			errutil.Handle(ctx, err, "failed to refresh case requirements")
		}
	}

	if ev != nil {
		uc.publisher.Publish(ctx, ev)
	}
	return updated
}
