package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/repository/memory"
	"github.com/optimatax/reliefdesk/pkg/service/storage"
	"github.com/optimatax/reliefdesk/pkg/usecase"
)

type failingDocumentRepository struct {
	*memory.Memory
}

type failingDocumentStore struct {
	interfaces.DocumentRepository
}

func (r *failingDocumentRepository) Document() interfaces.DocumentRepository {
	return &failingDocumentStore{DocumentRepository: r.Memory.Document()}
}

func (s *failingDocumentStore) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	return nil, errors.New("database unavailable")
}

// hookedStorage runs onExists once, before the content check answers
type hookedStorage struct {
	*storage.Memory
	onExists func()
}

func (s *hookedStorage) Exists(ctx context.Context, locator string) (bool, error) {
	if hook := s.onExists; hook != nil {
		s.onExists = nil
		hook()
	}
	return s.Memory.Exists(ctx, locator)
}

func TestDocumentUseCase_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores content and processes the document", func(t *testing.T) {
		f := setup(t)
		d := uploadDoc(t, f, f.client, "", types.DocumentTypeTaxReturn)

		gt.Value(t, d.UserID).Equal(f.client.UserID)
		gt.Value(t, d.Status).Equal(types.DocumentStatusProcessed)
		gt.Value(t, d.Verification).Equal(types.VerificationUnverified)
		gt.String(t, d.Locator).Contains(d.ID.String())

		data, meta, ok := f.blob.Read(d.Locator)
		gt.Bool(t, ok).True()
		gt.String(t, string(data)).Contains("%PDF")
		gt.Value(t, meta.ContentType).Equal("application/pdf")

		acts, err := f.uc.Activity.ListMine(ctx, f.client, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, acts).Length(1)
	})

	t.Run("staff upload to a case belongs to the case owner", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramPA)
		_, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, f.pro.UserID)
		gt.NoError(t, err).Required()

		d := uploadDoc(t, f, f.pro, c.ID, types.DocumentTypeIRSNotice)
		gt.Value(t, d.UserID).Equal(f.client.UserID)
		gt.Value(t, d.CaseID).Equal(c.ID)
	})

	t.Run("invisible case is not found", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramPA)

		_, err := f.uc.Document.Upload(ctx, f.other, usecase.UploadInput{
			CaseID:      c.ID,
			Type:        types.DocumentTypeIRSNotice,
			FileName:    "notice.pdf",
			ContentType: "application/pdf",
			Size:        3,
			Content:     strings.NewReader("pdf"),
		})
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
		gt.Value(t, f.blob.Len()).Equal(0)
	})

	t.Run("invalid uploads are rejected", func(t *testing.T) {
		policy := config.DefaultPolicy()
		policy.MaxUploadSize = 10
		f := setup(t, usecase.WithPolicy(policy))

		valid := func() usecase.UploadInput {
			return usecase.UploadInput{
				Type:        types.DocumentTypeBankStatement,
				FileName:    "statement.pdf",
				ContentType: "application/pdf",
				Size:        5,
				Content:     strings.NewReader("12345"),
			}
		}

		tests := []struct {
			name   string
			modify func(in *usecase.UploadInput)
		}{
			{"unknown type", func(in *usecase.UploadInput) { in.Type = "SELFIE" }},
			{"missing file name", func(in *usecase.UploadInput) { in.FileName = " " }},
			{"empty file", func(in *usecase.UploadInput) { in.Size = 0 }},
			{"too large", func(in *usecase.UploadInput) { in.Size = 11 }},
			{"content type", func(in *usecase.UploadInput) { in.ContentType = "application/x-msdownload" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := valid()
				tt.modify(&in)
				_, err := f.uc.Document.Upload(ctx, f.client, in)
				gt.Error(t, err).Is(model.ErrInvalidInput)
			})
		}
		gt.Value(t, f.blob.Len()).Equal(0)
	})

	t.Run("content is removed when metadata cannot be saved", func(t *testing.T) {
		f := setupWithRepo(t, &failingDocumentRepository{Memory: memory.New()})

		_, err := f.uc.Document.Upload(ctx, f.client, usecase.UploadInput{
			Type:        types.DocumentTypeTaxReturn,
			FileName:    "return.pdf",
			ContentType: "application/pdf",
			Size:        3,
			Content:     strings.NewReader("pdf"),
		})
		gt.Value(t, err).NotNil()
		gt.Value(t, f.blob.Len()).Equal(0)
	})

	t.Run("path separators are stripped from file names", func(t *testing.T) {
		f := setup(t)
		d, err := f.uc.Document.Upload(ctx, f.client, usecase.UploadInput{
			Type:        types.DocumentTypeTaxReturn,
			FileName:    `..\..\etc\return.pdf`,
			ContentType: "application/pdf",
			Size:        3,
			Content:     strings.NewReader("pdf"),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, d.FileName).Equal("return.pdf")
	})
}

func TestDocumentUseCase_ProcessDocument(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	d, err := f.repo.Document().Create(ctx, &model.Document{
		ID:           model.NewDocumentID(),
		UserID:       f.client.UserID,
		Type:         types.DocumentTypeTaxReturn,
		Status:       types.DocumentStatusPending,
		Verification: types.VerificationUnverified,
		FileName:     "return.pdf",
		ContentType:  "application/pdf",
		Size:         3,
		Locator:      "memory://lost/return.pdf",
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	})
	gt.NoError(t, err).Required()

	processed, err := f.uc.Document.ProcessDocument(ctx, d.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, processed.Status).Equal(types.DocumentStatusRejected)
	gt.Value(t, processed.RejectionReason).Equal("content is missing from storage")

	_, err = f.uc.Document.ProcessDocument(ctx, d.ID)
	gt.Error(t, err).Is(model.ErrInvalidDocument)

	_, err = f.uc.Document.ProcessDocument(ctx, "missing")
	gt.Error(t, err).Is(usecase.ErrDocumentNotFound)
}

func TestDocumentUseCase_Review(t *testing.T) {
	ctx := context.Background()

	t.Run("verification notifies the owner", func(t *testing.T) {
		f := setup(t)
		d := uploadDoc(t, f, f.client, "", types.DocumentTypeTaxReturn)

		_, err := f.uc.Document.Verify(ctx, f.client, d.ID)
		gt.Error(t, err).Is(model.ErrPermissionDenied)

		verified, err := f.uc.Document.Verify(ctx, f.admin, d.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, verified.Status).Equal(types.DocumentStatusVerified)
		gt.Value(t, verified.Verification).Equal(types.VerificationVerified)
		gt.Value(t, verified.VerifiedBy).Equal(f.admin.UserID)

		notes, err := f.uc.Notification.List(ctx, f.client, false, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(1).Required()
		gt.Value(t, notes[0].Kind).Equal(types.EventDocumentVerified)

		_, err = f.uc.Document.Verify(ctx, f.admin, d.ID)
		gt.Error(t, err).Is(model.ErrInvalidDocument)
	})

	t.Run("rejection clears requirement completion", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramPA)
		uploadDoc(t, f, f.client, c.ID, types.DocumentTypeTaxReturn)
		uploadDoc(t, f, f.client, c.ID, types.DocumentTypeIRSNotice)
		form := uploadDoc(t, f, f.client, c.ID, types.DocumentTypeForm843)

		got, err := f.uc.Case.GetCase(ctx, f.client, c.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.DocumentsComplete).True()

		rejected, err := f.uc.Document.Reject(ctx, f.admin, form.ID, "  unsigned form ")
		gt.NoError(t, err).Required()
		gt.Value(t, rejected.Status).Equal(types.DocumentStatusRejected)
		gt.Value(t, rejected.RejectionReason).Equal("unsigned form")

		got, err = f.uc.Case.GetCase(ctx, f.client, c.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.DocumentsComplete).False()

		notes, err := f.uc.Notification.List(ctx, f.client, true, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(1).Required()
		gt.Value(t, notes[0].Priority).Equal(types.NotificationPriorityHigh)
		gt.String(t, notes[0].Message).Contains("unsigned form")
	})
}

func TestDocumentUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)
	d := uploadDoc(t, f, f.client, c.ID, types.DocumentTypeTaxReturn)

	t.Run("other users cannot see the document", func(t *testing.T) {
		_, err := f.uc.Document.Delete(ctx, f.other, d.ID)
		gt.Error(t, err).Is(usecase.ErrDocumentNotFound)
		_, err = f.uc.Document.GetDocument(ctx, f.other, d.ID)
		gt.Error(t, err).Is(usecase.ErrDocumentNotFound)
	})

	t.Run("signed URL is issued before deletion", func(t *testing.T) {
		url, expires, err := f.uc.Document.DownloadURL(ctx, f.client, d.ID)
		gt.NoError(t, err).Required()
		gt.String(t, url).Contains("expires=")
		gt.Value(t, expires).Equal(fixedNow.Add(15 * time.Minute))
	})

	t.Run("owner soft-deletes the document", func(t *testing.T) {
		deleted, err := f.uc.Document.Delete(ctx, f.client, d.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, deleted.Status).Equal(types.DocumentStatusDeleted)

		stored, err := f.repo.Document().Get(ctx, d.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.DocumentStatusDeleted)

		docs, err := f.uc.Document.ListByCase(ctx, f.client, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(0)

		mine, err := f.uc.Document.ListMine(ctx, f.client)
		gt.NoError(t, err).Required()
		gt.Array(t, mine).Length(0)

		_, _, err = f.uc.Document.DownloadURL(ctx, f.client, d.ID)
		gt.Error(t, err).Is(usecase.ErrDocumentNotFound)

		_, err = f.uc.Document.Delete(ctx, f.client, d.ID)
		gt.Error(t, err).Is(model.ErrInvalidDocument)
	})

	t.Run("listing an invisible case is not found", func(t *testing.T) {
		_, err := f.uc.Document.ListByCase(ctx, f.other, c.ID)
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
	})
}

func TestDocumentUseCase_ProcessingKeepsConcurrentChange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		want   types.DocumentStatus
		change func(f *fixture, id model.DocumentID) error
	}{
		{
			name: "rejection",
			want: types.DocumentStatusRejected,
			change: func(f *fixture, id model.DocumentID) error {
				_, err := f.uc.Document.Reject(ctx, f.admin, id, "blurry scan")
				return err
			},
		},
		{
			name: "deletion",
			want: types.DocumentStatusDeleted,
			change: func(f *fixture, id model.DocumentID) error {
				_, err := f.uc.Document.Delete(ctx, f.client, id)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := &hookedStorage{Memory: storage.NewMemory()}
			f := setup(t, usecase.WithBlobStorage(blob))
			c := f.createCase(t, types.ProgramPA)

			blob.onExists = func() {
				docs, err := f.repo.Document().ListByCase(ctx, c.ID)
				gt.NoError(t, err).Required()
				gt.Array(t, docs).Length(1).Required()
				gt.Value(t, docs[0].Status).Equal(types.DocumentStatusProcessing)
				gt.NoError(t, tt.change(f, docs[0].ID)).Required()
			}

			d := uploadDoc(t, f, f.client, c.ID, types.DocumentTypeTaxReturn)
			gt.Value(t, d.Status).Equal(tt.want)

			stored, err := f.repo.Document().Get(ctx, d.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, stored.Status).Equal(tt.want)

			check, err := f.uc.Case.CheckRequirements(ctx, f.client, c.ID)
			gt.NoError(t, err).Required()
			gt.Array(t, check.Missing).Has(types.DocumentTypeTaxReturn)
		})
	}
}
