package canbus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notnil/linkio/netutil"
)

// NewLoggedBus wraps the given Bus and logs selected operations at the given
// level. When filters are given only frames accepted by MatchAny are logged.
// Errors are logged at slog.LevelError; receive timeouts at slog.LevelDebug.
func NewLoggedBus(inner Bus, logger *slog.Logger, level slog.Level, opts netutil.LogOption, filters ...Filter) Bus {
	return &loggedBus{
		inner:   inner,
		logger:  logger,
		level:   level,
		opts:    opts,
		filters: filters,
	}
}

type loggedBus struct {
	inner   Bus
	logger  *slog.Logger
	level   slog.Level
	opts    netutil.LogOption
	filters []Filter
}

func frameAttrs(f Frame) []any {
	return []any{
		"id", f.ID,
		"extended", f.Extended,
		"rtr", f.RTR,
		"len", int(f.Len),
		"data", f.Payload(),
		"string", f.String(),
	}
}

// SendFrame logs the frame and the result when write logging is enabled.
func (l *loggedBus) SendFrame(frame Frame) error {
	logging := l.opts&netutil.LogWrite != 0
	if logging && MatchAny(l.filters, frame) {
		l.logger.Log(context.Background(), l.level, "canbus send", frameAttrs(frame)...)
	}
	err := l.inner.SendFrame(frame)
	if logging && err != nil {
		l.logger.Log(context.Background(), slog.LevelError, "canbus send error",
			"id", frame.ID,
			"error", err,
		)
	}
	return err
}

// Receive logs the received frame or error when read logging is enabled.
func (l *loggedBus) Receive(timeout time.Duration) (Frame, error) {
	f, err := l.inner.Receive(timeout)
	if l.opts&netutil.LogRead == 0 {
		return f, err
	}
	switch {
	case errors.Is(err, ErrTimeout):
		l.logger.Log(context.Background(), slog.LevelDebug, "canbus receive timeout",
			"timeout", timeout,
		)
	case err != nil:
		l.logger.Log(context.Background(), slog.LevelError, "canbus receive error",
			"error", err,
		)
	case MatchAny(l.filters, f):
		l.logger.Log(context.Background(), l.level, "canbus receive", frameAttrs(f)...)
	}
	return f, err
}

// Close forwards to the inner Bus without logging.
func (l *loggedBus) Close() error {
	return l.inner.Close()
}
