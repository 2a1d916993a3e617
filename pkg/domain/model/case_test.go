package model_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

var (
	testNow   = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	adminUser = &model.Actor{UserID: "admin-1", Role: types.RoleAdmin}
	proUser   = &model.Actor{UserID: "pro-1", Role: types.RoleTaxProfessional}
	client    = &model.Actor{UserID: "client-1", Role: types.RoleClient}
)

func newTestCase(status types.CaseStatus) *model.Case {
	c := model.NewCase("OT2025060001", client.UserID, types.ProgramOIC, decimal.NewFromInt(15000), []int{2023, 2021, 2023}, "", testNow)
	c.Status = status
	return c
}

func TestNewCase(t *testing.T) {
	c := newTestCase(types.CaseStatusInitialAssessment)
	gt.Value(t, c.Status).Equal(types.CaseStatusInitialAssessment)
	gt.Value(t, c.Priority).Equal(types.CasePriorityMedium)
	gt.Value(t, c.TaxYears).Equal([]int{2021, 2023})
	gt.NoError(t, c.Validate())

	c.TotalDebt = decimal.NewFromInt(-1)
	gt.Error(t, c.Validate()).Is(model.ErrInvalidInput)
}

func TestGenerateCaseID(t *testing.T) {
	pattern := regexp.MustCompile(`^OT\d{10}$`)
	for i := 0; i < 10000; i++ {
		id := model.GenerateCaseID(testNow)
		if !pattern.MatchString(id.String()) {
			t.Fatalf("malformed case ID: %s", id)
		}
	}

	gt.Value(t, model.FormatCaseID(testNow, 7)).Equal(model.CaseID("OT2025060007"))
	gt.Value(t, model.FormatCaseID(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 9999)).Equal(model.CaseID("OT2024129999"))
	gt.NoError(t, model.CaseID("OT2024129999").Validate())
	gt.Error(t, model.CaseID("OT20241299").Validate()).Is(model.ErrInvalidInput)
}

func TestCalculateProgress(t *testing.T) {
	for _, s := range types.AllCaseStatuses() {
		p := model.CalculateProgress(newTestCase(s))
		gt.Bool(t, p >= 0 && p <= 100).True()
	}

	tests := []struct {
		status types.CaseStatus
		want   int
	}{
		{types.CaseStatusInitialAssessment, 10},
		{types.CaseStatusDocumentCollection, 25},
		{types.CaseStatusFormPreparation, 40},
		{types.CaseStatusReview, 55},
		{types.CaseStatusSubmission, 70},
		{types.CaseStatusIRSProcessing, 80},
		{types.CaseStatusNegotiation, 90},
		{types.CaseStatusAccepted, 100},
		{types.CaseStatusRejected, 100},
		{types.CaseStatusWithdrawn, 100},
		{types.CaseStatusClosed, 100},
		{types.CaseStatusOnHold, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			gt.Number(t, model.CalculateProgress(newTestCase(tt.status))).Equal(tt.want)
		})
	}

	t.Run("on hold reports the held-from status", func(t *testing.T) {
		c := newTestCase(types.CaseStatusReview)
		_, err := c.Transition(types.CaseStatusOnHold, proUser, types.TransitionPolicyStrict, "", testNow)
		gt.NoError(t, err).Required()
		gt.Number(t, model.CalculateProgress(c)).Equal(55)
	})

	t.Run("on hold without a held-from status reports 0", func(t *testing.T) {
		c := newTestCase(types.CaseStatusOnHold)
		gt.Value(t, c.HeldFrom()).Equal(types.CaseStatus(""))
		gt.Number(t, model.CalculateProgress(c)).Equal(0)
	})
}

func TestTransition(t *testing.T) {
	t.Run("appends exactly one history entry", func(t *testing.T) {
		for _, policy := range []types.TransitionPolicy{types.TransitionPolicyStrict, types.TransitionPolicyPermissive} {
			c := newTestCase(types.CaseStatusInitialAssessment)
			before := len(c.StateHistory)

			ev, err := c.Transition(types.CaseStatusDocumentCollection, proUser, policy, "docs requested", testNow)
			gt.NoError(t, err).Required()

			gt.Value(t, c.Status).Equal(types.CaseStatusDocumentCollection)
			gt.Array(t, c.StateHistory).Length(before + 1)
			last := c.StateHistory[len(c.StateHistory)-1]
			gt.Value(t, last.From).Equal(types.CaseStatusInitialAssessment)
			gt.Value(t, last.To).Equal(types.CaseStatusDocumentCollection)
			gt.Value(t, last.TriggeredBy).Equal(proUser.UserID)
			gt.Value(t, last.Note).Equal("docs requested")

			gt.Value(t, ev.Kind).Equal(types.EventCaseStatusChanged)
			gt.Value(t, ev.FromStatus).Equal(types.CaseStatusInitialAssessment)
			gt.Value(t, ev.ToStatus).Equal(types.CaseStatusDocumentCollection)
			gt.Value(t, ev.OwnerID).Equal(client.UserID)
		}
	})

	tests := []struct {
		name   string
		from   types.CaseStatus
		to     types.CaseStatus
		actor  *model.Actor
		policy types.TransitionPolicy
		err    error
	}{
		{"forward edge", types.CaseStatusReview, types.CaseStatusSubmission, proUser, types.TransitionPolicyStrict, nil},
		{"backward edge", types.CaseStatusReview, types.CaseStatusFormPreparation, adminUser, types.TransitionPolicyStrict, nil},
		{"hold from active", types.CaseStatusSubmission, types.CaseStatusOnHold, proUser, types.TransitionPolicyStrict, nil},
		{"outcome to closed", types.CaseStatusAccepted, types.CaseStatusClosed, proUser, types.TransitionPolicyStrict, nil},
		{"skip is rejected", types.CaseStatusInitialAssessment, types.CaseStatusSubmission, proUser, types.TransitionPolicyStrict, model.ErrInvalidTransition},
		{"closed is terminal", types.CaseStatusClosed, types.CaseStatusInitialAssessment, adminUser, types.TransitionPolicyStrict, model.ErrInvalidTransition},
		{"same status in strict", types.CaseStatusReview, types.CaseStatusReview, proUser, types.TransitionPolicyStrict, model.ErrInvalidTransition},
		{"same status in permissive", types.CaseStatusReview, types.CaseStatusReview, proUser, types.TransitionPolicyPermissive, nil},
		{"permissive allows any", types.CaseStatusClosed, types.CaseStatusInitialAssessment, adminUser, types.TransitionPolicyPermissive, nil},
		{"client is denied", types.CaseStatusReview, types.CaseStatusSubmission, client, types.TransitionPolicyPermissive, model.ErrPermissionDenied},
		{"nil actor is denied", types.CaseStatusReview, types.CaseStatusSubmission, nil, types.TransitionPolicyStrict, model.ErrPermissionDenied},
		{"unknown status", types.CaseStatusReview, types.CaseStatus("DONE"), adminUser, types.TransitionPolicyPermissive, model.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCase(tt.from)
			_, err := c.Transition(tt.to, tt.actor, tt.policy, "", testNow)
			if tt.err == nil {
				gt.NoError(t, err)
				gt.Value(t, c.Status).Equal(tt.to)
				gt.Array(t, c.StateHistory).Length(1)
			} else {
				gt.Error(t, err).Is(tt.err)
				gt.Value(t, c.Status).Equal(tt.from)
				gt.Array(t, c.StateHistory).Length(0)
			}
		})
	}
}

func TestHoldAndResume(t *testing.T) {
	c := newTestCase(types.CaseStatusFormPreparation)
	_, err := c.Transition(types.CaseStatusOnHold, proUser, types.TransitionPolicyStrict, "waiting on client", testNow)
	gt.NoError(t, err).Required()
	gt.Value(t, c.HeldFrom()).Equal(types.CaseStatusFormPreparation)

	gt.Bool(t, c.CanTransitionTo(types.CaseStatusReview)).False()
	gt.Bool(t, c.CanTransitionTo(types.CaseStatusWithdrawn)).True()

	_, err = c.Transition(types.CaseStatusFormPreparation, proUser, types.TransitionPolicyStrict, "", testNow.Add(time.Hour))
	gt.NoError(t, err).Required()
	gt.Value(t, c.Status).Equal(types.CaseStatusFormPreparation)
	gt.Array(t, c.StateHistory).Length(2)
}

func TestIsOverdue(t *testing.T) {
	c := newTestCase(types.CaseStatusReview)
	gt.Bool(t, c.IsOverdue(testNow)).False()

	deadline := testNow
	c.SetDeadline(&deadline, testNow)
	gt.Bool(t, c.IsOverdue(testNow)).False()
	gt.Bool(t, c.IsOverdue(testNow.Add(time.Second))).True()

	ev := c.MarkOverdue(testNow.Add(time.Second))
	gt.Value(t, ev).NotNil()
	gt.Value(t, ev.Kind).Equal(types.EventCaseOverdue)
	gt.Value(t, c.MarkOverdue(testNow.Add(time.Minute))).Nil()

	next := testNow.Add(24 * time.Hour)
	c.SetDeadline(&next, testNow)
	gt.Value(t, c.OverdueNotifiedAt).Nil()
}

func TestAssign(t *testing.T) {
	reviewer := &model.User{ID: "pro-2", Role: types.RoleTaxProfessional}

	t.Run("admin assigns a professional", func(t *testing.T) {
		c := newTestCase(types.CaseStatusReview)
		ev, err := c.Assign(reviewer, adminUser, testNow)
		gt.NoError(t, err).Required()
		gt.Value(t, c.AssignedTo).Equal(reviewer.ID)
		gt.Value(t, ev.AssigneeID).Equal(reviewer.ID)
		gt.Bool(t, proUser.CanAccessCase(c)).False()
		gt.Bool(t, reviewer.Actor().CanAccessCase(c)).True()
	})

	t.Run("professional cannot assign", func(t *testing.T) {
		c := newTestCase(types.CaseStatusReview)
		_, err := c.Assign(reviewer, proUser, testNow)
		gt.Error(t, err).Is(model.ErrPermissionDenied)
	})

	t.Run("client cannot be assignee", func(t *testing.T) {
		c := newTestCase(types.CaseStatusReview)
		_, err := c.Assign(&model.User{ID: "c-2", Role: types.RoleClient}, adminUser, testNow)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})
}

func TestCaseCopy(t *testing.T) {
	c := newTestCase(types.CaseStatusReview)
	_, err := c.Transition(types.CaseStatusSubmission, proUser, types.TransitionPolicyStrict, "", testNow)
	gt.NoError(t, err).Required()

	dup := c.Copy()
	dup.TaxYears[0] = 1999
	dup.StateHistory[0].Note = "changed"
	gt.Value(t, c.TaxYears[0]).Equal(2021)
	gt.Value(t, c.StateHistory[0].Note).Equal("")
}
