package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/service/slack"
	slackapi "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

type fakeSlack struct {
	lookups atomic.Int32
	posted  atomic.Value
}

func (f *fakeSlack) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users.lookupByEmail", func(w http.ResponseWriter, r *http.Request) {
		f.lookups.Add(1)
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("email") != "dana@example.com" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "users_not_found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"user": map[string]any{"id": "U012DANA", "name": "dana"},
		})
	})
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.posted.Store(r.Form.Get("channel"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"channel": r.Form.Get("channel"),
			"ts":      "1718443800.000100",
		})
	})
	return mux
}

func newFakeService(t *testing.T, opts ...slack.Option) (slack.Service, *fakeSlack) {
	t.Helper()

	fake := &fakeSlack{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	opts = append(opts, slack.WithAPIURL(srv.URL+"/"))
	svc, err := slack.New("xoxb-test", opts...)
	gt.NoError(t, err).Required()
	return svc, fake
}

func TestLookupUserIDByEmail(t *testing.T) {
	t.Run("caches resolved member IDs", func(t *testing.T) {
		svc, fake := newFakeService(t)
		ctx := context.Background()

		id, err := svc.LookupUserIDByEmail(ctx, "Dana@Example.com")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("U012DANA")

		id, err = svc.LookupUserIDByEmail(ctx, "dana@example.com")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("U012DANA")
		gt.Value(t, fake.lookups.Load()).Equal(int32(1))
	})

	t.Run("expired entries are looked up again", func(t *testing.T) {
		svc, fake := newFakeService(t, slack.TestWithCacheTTL(time.Nanosecond))
		ctx := context.Background()

		_, err := svc.LookupUserIDByEmail(ctx, "dana@example.com")
		gt.NoError(t, err).Required()
		time.Sleep(time.Millisecond)
		_, err = svc.LookupUserIDByEmail(ctx, "dana@example.com")
		gt.NoError(t, err).Required()
		gt.Value(t, fake.lookups.Load()).Equal(int32(2))
	})

	t.Run("unknown member returns ErrUserNotFound", func(t *testing.T) {
		svc, _ := newFakeService(t)

		_, err := svc.LookupUserIDByEmail(context.Background(), "nobody@example.com")
		gt.Error(t, err).Is(slack.ErrUserNotFound)
	})
}

func TestPostMessage(t *testing.T) {
	svc, fake := newFakeService(t)

	blocks := []slackapi.Block{
		slackapi.NewSectionBlock(slackapi.NewTextBlockObject(slackapi.MarkdownType, "*Case updated*", false, false), nil, nil),
	}
	ts, err := svc.PostMessage(context.Background(), "U012DANA", blocks, "Case updated")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1718443800.000100")
	gt.Value(t, fake.posted.Load()).Equal("U012DANA")
}
