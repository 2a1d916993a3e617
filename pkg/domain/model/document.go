package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

// DocumentID is the unique identifier of a document
type DocumentID string

func (x DocumentID) String() string { return string(x) }

// NewDocumentID generates a new document ID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// Document is metadata of an uploaded file. The content lives in blob storage.
type Document struct {
	ID              DocumentID
	UserID          UserID
	CaseID          CaseID // Optional
	Type            types.DocumentType
	Status          types.DocumentStatus
	Verification    types.VerificationStatus
	FileName        string
	ContentType     string
	Size            int64
	Locator         string
	VerifiedBy      UserID
	VerifiedAt      *time.Time
	RejectionReason string
	Version         int64 // Optimistic lock, incremented by every update
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Copy returns a deep copy of the document
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}
	dup := *d
	if d.VerifiedAt != nil {
		t := *d.VerifiedAt
		dup.VerifiedAt = &t
	}
	return &dup
}

func (d *Document) invalid(to types.DocumentStatus) error {
	return goerr.Wrap(ErrInvalidDocument, "document status change is not allowed",
		goerr.V(DocumentIDKey, d.ID), goerr.V(FromStatusKey, d.Status), goerr.V(ToStatusKey, to))
}

// StartProcessing moves a pending document to processing
func (d *Document) StartProcessing(now time.Time) error {
	if d.Status != types.DocumentStatusPending {
		return d.invalid(types.DocumentStatusProcessing)
	}
	d.Status = types.DocumentStatusProcessing
	d.UpdatedAt = now
	return nil
}

// FinishProcessing moves a processing document to processed
func (d *Document) FinishProcessing(now time.Time) (*Event, error) {
	if d.Status != types.DocumentStatusProcessing {
		return nil, d.invalid(types.DocumentStatusProcessed)
	}
	d.Status = types.DocumentStatusProcessed
	d.UpdatedAt = now
	return NewDocumentEvent(types.EventDocumentProcessed, SystemActor.UserID, d, now), nil
}

// Verify accepts a processed document
func (d *Document) Verify(actor *Actor, now time.Time) (*Event, error) {
	if !actor.Can(types.ActionVerifyDocument) {
		return nil, goerr.Wrap(ErrPermissionDenied, "actor cannot verify documents",
			goerr.V(DocumentIDKey, d.ID))
	}
	if d.Status != types.DocumentStatusProcessed {
		return nil, d.invalid(types.DocumentStatusVerified)
	}
	d.Status = types.DocumentStatusVerified
	d.Verification = types.VerificationVerified
	d.VerifiedBy = actor.UserID
	d.VerifiedAt = &now
	d.RejectionReason = ""
	d.UpdatedAt = now
	return NewDocumentEvent(types.EventDocumentVerified, actor.UserID, d, now), nil
}

// Reject refuses a document that is not yet deleted or rejected
func (d *Document) Reject(actor *Actor, reason string, now time.Time) (*Event, error) {
	if !actor.Can(types.ActionVerifyDocument) {
		return nil, goerr.Wrap(ErrPermissionDenied, "actor cannot reject documents",
			goerr.V(DocumentIDKey, d.ID))
	}
	if d.Status == types.DocumentStatusDeleted || d.Status == types.DocumentStatusRejected {
		return nil, d.invalid(types.DocumentStatusRejected)
	}
	d.Status = types.DocumentStatusRejected
	d.Verification = types.VerificationRejected
	d.VerifiedBy = actor.UserID
	d.VerifiedAt = &now
	d.RejectionReason = reason
	d.UpdatedAt = now

	ev := NewDocumentEvent(types.EventDocumentRejected, actor.UserID, d, now)
	ev.Note = reason
	return ev, nil
}

// MarkDeleted soft-deletes the document. Metadata is never removed.
func (d *Document) MarkDeleted(actor *Actor, now time.Time) (*Event, error) {
	if d.Status == types.DocumentStatusDeleted {
		return nil, d.invalid(types.DocumentStatusDeleted)
	}
	d.Status = types.DocumentStatusDeleted
	d.UpdatedAt = now
	return NewDocumentEvent(types.EventDocumentDeleted, actor.UserID, d, now), nil
}

// CanAccessDocument reports whether the actor may see the document. Documents
// attached to a case are visible to anyone who can see the case.
func (a *Actor) CanAccessDocument(d *Document, c *Case) bool {
	if a == nil || d == nil {
		return false
	}
	if a.Can(types.ActionViewAllCases) || d.UserID == a.UserID {
		return true
	}
	return c != nil && d.CaseID == c.ID && a.CanAccessCase(c)
}
