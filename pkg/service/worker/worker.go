package worker

import (
	"context"
	"time"

	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// loop runs a task at a fixed interval until stopped
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Tasks are idempotent, so an overlap after a restart only repeats work
type loop struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newLoop(name string, interval time.Duration, task func(ctx context.Context) error) *loop {
	return &loop{
		name:     name,
		interval: interval,
		task:     task,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. The first run happens immediately and
// does not block the caller.
func (l *loop) Start(ctx context.Context) error {
	logging.Default().Info("worker starting",
		"worker", l.name,
		"interval", l.interval.String())

	go l.run(ctx)

	return nil
}

// Stop signals the loop to stop and waits for the current run to finish
func (l *loop) Stop() {
	logging.Default().Info("worker stopping", "worker", l.name)
	close(l.stopCh)
	<-l.doneCh
	logging.Default().Info("worker stopped", "worker", l.name)
}

func (l *loop) run(ctx context.Context) {
	defer close(l.doneCh)

	l.runTask(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runTask(ctx)

		case <-l.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("worker context cancelled", "worker", l.name)
			return
		}
	}
}

func (l *loop) runTask(ctx context.Context) {
	if err := l.task(ctx); err != nil {
		// Keep running; the next tick retries.
		errutil.Handle(ctx, err, l.name+" failed")
	}
}
