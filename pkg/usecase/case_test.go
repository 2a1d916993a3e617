package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/config"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/shopspring/decimal"
)

func TestCaseUseCase_CreateCase(t *testing.T) {
	ctx := context.Background()

	t.Run("client creates a case in its initial status", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramOIC)

		gt.NoError(t, c.ID.Validate())
		gt.String(t, c.ID.String()).Contains("OT202506")
		gt.Value(t, c.OwnerID).Equal(f.client.UserID)
		gt.Value(t, c.Status).Equal(types.CaseStatusInitialAssessment)
		gt.Value(t, c.TaxYears).Equal([]int{2021, 2023})
		gt.Value(t, c.Version).Equal(int64(1))

		acts, err := f.repo.Activity().ListByCase(ctx, c.ID, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, acts).Length(1).Required()
		gt.Value(t, acts[0].Kind).Equal(types.EventCaseCreated)
	})

	t.Run("tax professional cannot create cases", func(t *testing.T) {
		f := setup(t)
		_, err := f.uc.Case.CreateCase(ctx, f.pro, usecase.CreateCaseInput{Program: types.ProgramIA})
		gt.Error(t, err).Is(model.ErrPermissionDenied)
	})

	t.Run("negative debt is rejected", func(t *testing.T) {
		f := setup(t)
		_, err := f.uc.Case.CreateCase(ctx, f.client, usecase.CreateCaseInput{
			Program:   types.ProgramIA,
			TotalDebt: decimal.NewFromInt(-1),
		})
		gt.Error(t, err).Is(model.ErrInvalidInput)

		_, err = f.uc.Case.CreateCase(ctx, f.client, usecase.CreateCaseInput{
			Program:   types.ProgramIA,
			TotalDebt: decimal.New(1, 20000000),
		})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("admin creates a case for a client", func(t *testing.T) {
		f := setup(t)
		c, err := f.uc.Case.CreateCase(ctx, f.admin, usecase.CreateCaseInput{
			OwnerID: f.client.UserID,
			Program: types.ProgramCNC,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, c.OwnerID).Equal(f.client.UserID)

		_, err = f.uc.Case.CreateCase(ctx, f.admin, usecase.CreateCaseInput{
			OwnerID: "missing-user",
			Program: types.ProgramCNC,
		})
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("client cannot create cases for others", func(t *testing.T) {
		f := setup(t)
		_, err := f.uc.Case.CreateCase(ctx, f.client, usecase.CreateCaseInput{
			OwnerID: f.other.UserID,
			Program: types.ProgramIA,
		})
		gt.Error(t, err).Is(model.ErrPermissionDenied)
	})

	t.Run("ID collisions are retried with a fresh suffix", func(t *testing.T) {
		f := setup(t)
		taken := model.FormatCaseID(fixedNow, 1)
		ids := []model.CaseID{taken, taken, taken, model.FormatCaseID(fixedNow, 4242)}
		var calls int
		f.uc.Case.SetCaseIDGenerator(func(time.Time) model.CaseID {
			id := ids[calls]
			calls++
			return id
		})

		first := f.createCase(t, types.ProgramIA)
		gt.Value(t, first.ID).Equal(taken)

		c := f.createCase(t, types.ProgramIA)
		gt.Value(t, c.ID).Equal(model.CaseID("OT2025064242"))
		gt.Value(t, calls).Equal(4)
	})

	t.Run("exhausted ID attempts report a conflict", func(t *testing.T) {
		policy := config.DefaultPolicy()
		policy.CaseIDAttempts = 3
		f := setup(t, usecase.WithPolicy(policy))
		first := f.createCase(t, types.ProgramIA)

		var calls int
		f.uc.Case.SetCaseIDGenerator(func(time.Time) model.CaseID {
			calls++
			return first.ID
		})

		_, err := f.uc.Case.CreateCase(ctx, f.client, usecase.CreateCaseInput{Program: types.ProgramIA})
		gt.Error(t, err).Is(interfaces.ErrConflict)
		gt.Value(t, calls).Equal(3)
	})
}

func TestCaseUseCase_Visibility(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)

	t.Run("owner and admin see the case", func(t *testing.T) {
		_, err := f.uc.Case.GetCase(ctx, f.client, c.ID)
		gt.NoError(t, err)
		_, err = f.uc.Case.GetCase(ctx, f.admin, c.ID)
		gt.NoError(t, err)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := f.uc.Case.GetCase(ctx, f.other, c.ID)
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
		_, err = f.uc.Case.GetCase(ctx, f.pro, c.ID)
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
	})

	t.Run("unknown case is not found", func(t *testing.T) {
		_, err := f.uc.Case.GetCase(ctx, f.admin, "OT2025069999")
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
	})

	t.Run("assignee sees the case", func(t *testing.T) {
		_, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, f.pro.UserID)
		gt.NoError(t, err).Required()

		_, err = f.uc.Case.GetCase(ctx, f.pro, c.ID)
		gt.NoError(t, err)

		cases, err := f.uc.Case.ListCases(ctx, f.pro, nil, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(1)
	})

	t.Run("list is limited to accessible cases", func(t *testing.T) {
		f.createCase(t, types.ProgramOIC)

		mine, err := f.uc.Case.ListCases(ctx, f.client, nil, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, mine).Length(2)

		others, err := f.uc.Case.ListCases(ctx, f.other, nil, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, others).Length(0)

		status := types.CaseStatusInitialAssessment
		all, err := f.uc.Case.ListCases(ctx, f.admin, &status, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(1)

		bad := types.CaseStatus("DONE")
		_, err = f.uc.Case.ListCases(ctx, f.admin, &bad, 0)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})
}

func TestCaseUseCase_TransitionCase(t *testing.T) {
	ctx := context.Background()

	t.Run("staff moves the case and the owner is notified", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramIA)

		updated, err := f.uc.Case.TransitionCase(ctx, f.admin, c.ID, types.CaseStatusDocumentCollection, "intake reviewed")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.CaseStatusDocumentCollection)
		gt.Value(t, updated.Version).Equal(int64(2))
		gt.Array(t, updated.StateHistory).Length(1).Required()
		gt.Value(t, updated.StateHistory[0].From).Equal(types.CaseStatusInitialAssessment)
		gt.Value(t, updated.StateHistory[0].TriggeredBy).Equal(f.admin.UserID)
		gt.Value(t, updated.StateHistory[0].Note).Equal("intake reviewed")

		notes, err := f.uc.Notification.List(ctx, f.client, true, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(1).Required()
		gt.Value(t, notes[0].Kind).Equal(types.EventCaseStatusChanged)
	})

	t.Run("owner client is forbidden", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramIA)

		_, err := f.uc.Case.TransitionCase(ctx, f.client, c.ID, types.CaseStatusDocumentCollection, "")
		gt.Error(t, err).Is(model.ErrPermissionDenied)
	})

	t.Run("unassigned professional gets not found", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramIA)

		_, err := f.uc.Case.TransitionCase(ctx, f.pro, c.ID, types.CaseStatusDocumentCollection, "")
		gt.Error(t, err).Is(usecase.ErrCaseNotFound)
	})

	t.Run("strict policy rejects skipping stages", func(t *testing.T) {
		f := setup(t)
		c := f.createCase(t, types.ProgramIA)

		_, err := f.uc.Case.TransitionCase(ctx, f.admin, c.ID, types.CaseStatusAccepted, "")
		gt.Error(t, err).Is(model.ErrInvalidTransition)

		got, err := f.uc.Case.GetCase(ctx, f.admin, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.StateHistory).Length(0)
	})

	t.Run("permissive policy allows any status", func(t *testing.T) {
		policy := config.DefaultPolicy()
		policy.TransitionPolicy = types.TransitionPolicyPermissive
		f := setup(t, usecase.WithPolicy(policy))
		c := f.createCase(t, types.ProgramIA)

		updated, err := f.uc.Case.TransitionCase(ctx, f.admin, c.ID, types.CaseStatusAccepted, "")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.CaseStatusAccepted)
	})

	t.Run("version conflicts are retried", func(t *testing.T) {
		repo := newConflictRepository(0)
		f := setupWithRepo(t, repo)
		c := f.createCase(t, types.ProgramIA)
		repo.caseRepo.remaining.Store(2)

		updated, err := f.uc.Case.TransitionCase(ctx, f.admin, c.ID, types.CaseStatusDocumentCollection, "")
		gt.NoError(t, err).Required()
		gt.Array(t, updated.StateHistory).Length(1)
	})

	t.Run("persistent conflicts are surfaced", func(t *testing.T) {
		repo := newConflictRepository(0)
		f := setupWithRepo(t, repo)
		c := f.createCase(t, types.ProgramIA)
		repo.caseRepo.remaining.Store(10)

		_, err := f.uc.Case.TransitionCase(ctx, f.admin, c.ID, types.CaseStatusDocumentCollection, "")
		gt.Error(t, err).Is(interfaces.ErrConflict)
	})
}

func TestCaseUseCase_AssignCase(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)

	t.Run("client cannot be assigned", func(t *testing.T) {
		_, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, f.other.UserID)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("unknown assignee is rejected", func(t *testing.T) {
		_, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, "nobody")
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})

	t.Run("admin assigns a professional", func(t *testing.T) {
		updated, err := f.uc.Case.AssignCase(ctx, f.admin, c.ID, f.pro.UserID)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AssignedTo).Equal(f.pro.UserID)

		notes, err := f.uc.Notification.List(ctx, f.pro, false, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(1).Required()
		gt.Value(t, notes[0].Kind).Equal(types.EventCaseAssigned)
	})

	t.Run("assigned professional cannot reassign", func(t *testing.T) {
		_, err := f.uc.Case.AssignCase(ctx, f.pro, c.ID, f.pro.UserID)
		gt.Error(t, err).Is(model.ErrPermissionDenied)
	})
}

func TestCaseUseCase_SetDeadline(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)
	deadline := fixedNow.Add(-time.Hour)

	updated, err := f.uc.Case.SetDeadline(ctx, f.admin, c.ID, &deadline)
	gt.NoError(t, err).Required()
	gt.Value(t, updated.NextDeadline).NotNil().Required()
	gt.Bool(t, updated.IsOverdue(fixedNow)).True()

	summary, err := f.uc.Case.GetCaseSummary(ctx, f.client, c.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, summary.Overdue).True()

	cleared, err := f.uc.Case.SetDeadline(ctx, f.admin, c.ID, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, cleared.NextDeadline).Nil()

	_, err = f.uc.Case.SetDeadline(ctx, f.client, c.ID, &deadline)
	gt.Error(t, err).Is(model.ErrPermissionDenied)
}

func uploadDoc(t *testing.T, f *fixture, actor *model.Actor, caseID model.CaseID, docType types.DocumentType) *model.Document {
	t.Helper()
	content := "%PDF-1.7 " + string(docType)
	d, err := f.uc.Document.Upload(context.Background(), actor, usecase.UploadInput{
		CaseID:      caseID,
		Type:        docType,
		FileName:    strings.ToLower(string(docType)) + ".pdf",
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	})
	gt.NoError(t, err).Required()
	return d
}

func TestCaseUseCase_CheckRequirements(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.createCase(t, types.ProgramIA)

	check, err := f.uc.Case.CheckRequirements(ctx, f.client, c.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, check.Complete).False()
	gt.Value(t, check.Progress).Equal(0)
	gt.Array(t, check.Missing).Length(4)

	uploadDoc(t, f, f.client, c.ID, types.DocumentTypeTaxReturn)
	uploadDoc(t, f, f.client, c.ID, types.DocumentTypeIRSTranscript)
	uploadDoc(t, f, f.client, c.ID, types.DocumentTypeProofOfIncome)

	check, err = f.uc.Case.CheckRequirements(ctx, f.client, c.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, check.Progress).Equal(75)
	gt.Value(t, check.Missing).Equal([]types.DocumentType{types.DocumentTypeForm9465})

	uploadDoc(t, f, f.client, c.ID, types.DocumentTypeForm9465)

	got, err := f.uc.Case.GetCase(ctx, f.client, c.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, got.DocumentsComplete).True()

	summary, err := f.uc.Case.GetCaseSummary(ctx, f.client, c.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, summary.Requirements.Complete).True()
	gt.Array(t, summary.Documents).Length(4)
	gt.Value(t, summary.Progress).Equal(10)
	gt.Value(t, summary.Assessment).Nil()

	_, err = f.uc.Case.CheckRequirements(ctx, f.other, c.ID)
	gt.Error(t, err).Is(usecase.ErrCaseNotFound)
}
