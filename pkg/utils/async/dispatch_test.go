package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/optimatax/reliefdesk/pkg/utils/async"
)

func TestDispatchRunsHandler(t *testing.T) {
	done := make(chan struct{})
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestDispatchDetachesFromCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := make(chan error, 1)
	async.Dispatch(ctx, func(ctx context.Context) error {
		result <- ctx.Err()
		return nil
	})

	select {
	case err := <-result:
		gt.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}
