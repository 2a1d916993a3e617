package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil closer is
// ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", slog.Any("error", err))
	}
}
