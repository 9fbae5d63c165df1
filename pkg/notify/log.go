package notify

import (
	"context"
	"log/slog"

	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/types"
)

// LogSink writes one structured record per event.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.Ensure(logger).With("component", "events")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(ctx context.Context, ev types.Event) error {
	attrs := []any{"event_id", ev.ID, "mobile", ev.Mobile, "requester", ev.Requester, "made", ev.Made}
	if !ev.Due.IsZero() {
		attrs = append(attrs, "due", ev.Due)
	}
	s.logger.InfoContext(ctx, string(ev.Kind), attrs...)
	return nil
}
