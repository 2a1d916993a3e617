package errutil_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(t.Context(), slog.New(slog.NewJSONHandler(&buf, nil)))

	errutil.Handle(ctx, goerr.New("delivery failed", goerr.V("notification_id", "N1")), "failed to deliver")

	out := buf.String()
	gt.String(t, out).Contains(`"msg":"failed to deliver"`)
	gt.String(t, out).Contains("delivery failed")
	gt.String(t, out).Contains("N1")
}

func TestHandleNil(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(t.Context(), slog.New(slog.NewJSONHandler(&buf, nil)))

	errutil.Handle(ctx, nil, "nothing")
	gt.Value(t, buf.Len()).Equal(0)
}

func TestHandleReportsGoerrValues(t *testing.T) {
	events := make(chan *sentry.Event, 1)
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events <- event
			return nil
		},
	})
	gt.NoError(t, err).Required()

	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })

	ctx := logging.With(t.Context(), slog.New(slog.DiscardHandler))
	errutil.Handle(ctx, goerr.New("delivery failed", goerr.V("notification_id", "N1")), "failed to deliver")

	select {
	case ev := <-events:
		gt.Value(t, ev.Tags["message"]).Equal("failed to deliver")
		gt.Value(t, ev.Contexts["goerr"]["notification_id"]).Equal(any("N1"))
	default:
		t.Fatal("no event was reported")
	}
}
