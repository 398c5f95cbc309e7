package udp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/notnil/linkio/netutil"
)

// NewLoggedEndpoint wraps inner and logs selected operations at level.
// Errors are logged at slog.LevelError and receive timeouts at slog.LevelDebug.
func NewLoggedEndpoint(inner Endpoint, logger *slog.Logger, level slog.Level, opts netutil.LogOption) Endpoint {
	return &loggedEndpoint{inner: inner, logger: logger, level: level, opts: opts}
}

type loggedEndpoint struct {
	inner  Endpoint
	logger *slog.Logger
	level  slog.Level
	opts   netutil.LogOption
}

func (l *loggedEndpoint) Send(p []byte) error {
	err := l.inner.Send(p)
	if l.opts&netutil.LogWrite == 0 {
		return err
	}
	if err != nil {
		l.logger.Log(context.Background(), slog.LevelError, "udp send error",
			"bytes", len(p),
			"error", err,
		)
		return err
	}
	l.logger.Log(context.Background(), l.level, "udp send", "bytes", len(p))
	return nil
}

func (l *loggedEndpoint) Receive(buf []byte, timeout time.Duration) (int, error) {
	n, err := l.inner.Receive(buf, timeout)
	l.logReceive(n, "", timeout, err)
	return n, err
}

func (l *loggedEndpoint) ReceiveFrom(buf []byte, timeout time.Duration) (int, string, error) {
	n, peer, err := l.inner.ReceiveFrom(buf, timeout)
	l.logReceive(n, peer, timeout, err)
	return n, peer, err
}

func (l *loggedEndpoint) logReceive(n int, peer string, timeout time.Duration, err error) {
	if l.opts&netutil.LogRead == 0 {
		return
	}
	switch {
	case errors.Is(err, ErrTimeout):
		l.logger.Log(context.Background(), slog.LevelDebug, "udp receive timeout", "timeout", timeout)
	case err != nil:
		l.logger.Log(context.Background(), slog.LevelError, "udp receive error", "error", err)
	case peer != "":
		l.logger.Log(context.Background(), l.level, "udp receive", "bytes", n, "peer", peer)
	default:
		l.logger.Log(context.Background(), l.level, "udp receive", "bytes", n)
	}
}

// Close forwards to the inner Endpoint without logging.
func (l *loggedEndpoint) Close() error {
	return l.inner.Close()
}
