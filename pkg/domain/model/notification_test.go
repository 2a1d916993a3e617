package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
)

func TestNotificationsForEvent(t *testing.T) {
	notify := model.DefaultNotifyStatuses()

	t.Run("status change in notify set", func(t *testing.T) {
		c := newTestCase(types.CaseStatusInitialAssessment)
		ev, err := c.Transition(types.CaseStatusDocumentCollection, proUser, types.TransitionPolicyStrict, "", testNow)
		gt.NoError(t, err).Required()

		got := model.NotificationsForEvent(ev, notify)
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].UserID).Equal(client.UserID)
		gt.Value(t, got[0].CaseID).Equal(c.ID)
		gt.Value(t, got[0].Priority).Equal(types.NotificationPriorityNormal)
		gt.String(t, got[0].Message).Contains("DOCUMENT_COLLECTION")
	})

	t.Run("status outside notify set", func(t *testing.T) {
		c := newTestCase(types.CaseStatusDocumentCollection)
		ev, err := c.Transition(types.CaseStatusFormPreparation, proUser, types.TransitionPolicyStrict, "", testNow)
		gt.NoError(t, err).Required()
		gt.Array(t, model.NotificationsForEvent(ev, notify)).Length(0)
	})

	t.Run("outcome is high priority", func(t *testing.T) {
		c := newTestCase(types.CaseStatusIRSProcessing)
		ev, err := c.Transition(types.CaseStatusAccepted, proUser, types.TransitionPolicyStrict, "", testNow)
		gt.NoError(t, err).Required()
		got := model.NotificationsForEvent(ev, notify)
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].Priority).Equal(types.NotificationPriorityHigh)
	})

	t.Run("assignment notifies reviewer and owner", func(t *testing.T) {
		c := newTestCase(types.CaseStatusReview)
		ev, err := c.Assign(&model.User{ID: proUser.UserID, Role: types.RoleTaxProfessional}, adminUser, testNow)
		gt.NoError(t, err).Required()
		got := model.NotificationsForEvent(ev, notify)
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].UserID).Equal(proUser.UserID)
		gt.Value(t, got[1].UserID).Equal(client.UserID)
	})

	t.Run("actor is not notified about own action", func(t *testing.T) {
		d := newTestDocument()
		ev, err := d.MarkDeleted(client, testNow)
		gt.NoError(t, err).Required()
		gt.Array(t, model.NotificationsForEvent(ev, notify)).Length(0)

		d = newTestDocument()
		d.UserID = adminUser.UserID
		ev, err = d.Reject(adminUser, "blurry", testNow)
		gt.NoError(t, err).Required()
		gt.Array(t, model.NotificationsForEvent(ev, notify)).Length(0)
	})

	t.Run("assessment results reach the owner", func(t *testing.T) {
		a := model.NewAssessment(client.UserID, "", testNow)
		ev := model.NewAssessmentEvent(types.EventAssessmentCompleted, client.UserID, a, testNow)
		got := model.NotificationsForEvent(ev, notify)
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].UserID).Equal(client.UserID)
	})
}

func TestActivityFromEvent(t *testing.T) {
	c := newTestCase(types.CaseStatusReview)
	ev, err := c.Transition(types.CaseStatusSubmission, proUser, types.TransitionPolicyStrict, "", testNow)
	gt.NoError(t, err).Required()

	act := model.NewActivityFromEvent(ev)
	gt.Value(t, act.ActorID).Equal(proUser.UserID)
	gt.Value(t, act.Kind).Equal(types.EventCaseStatusChanged)
	gt.Value(t, act.Context.CaseID).Equal(c.ID)
	gt.Value(t, act.Context.FromStatus).Equal(types.CaseStatusReview)
	gt.Value(t, act.Context.ToStatus).Equal(types.CaseStatusSubmission)
	gt.String(t, act.Description).Contains("REVIEW")
	gt.Value(t, act.CreatedAt).Equal(testNow)
}
