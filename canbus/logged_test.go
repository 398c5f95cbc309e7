package canbus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notnil/linkio/netutil"
)

type recordSink struct {
	mu      sync.Mutex
	records []slog.Record
}

func (s *recordSink) Enabled(context.Context, slog.Level) bool { return true }
func (s *recordSink) Handle(_ context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r.Clone())
	return nil
}
func (s *recordSink) WithAttrs([]slog.Attr) slog.Handler { return s }
func (s *recordSink) WithGroup(string) slog.Handler      { return s }

func (s *recordSink) has(level slog.Level, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Level == level && r.Message == msg {
			return true
		}
	}
	return false
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestLoggedBus_WriteAndReadLogging(t *testing.T) {
	lb := NewLoopbackBus()
	defer lb.Close()

	sink := &recordSink{}
	logger := slog.New(sink)

	sender := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, netutil.LogWrite)
	receiver := NewLoggedBus(lb.Open(), logger, slog.LevelInfo, netutil.LogRead)
	defer sender.Close()
	defer receiver.Close()

	require.NoError(t, sender.SendFrame(MustFrame(0x123, []byte{1, 2, 3})))
	_, err := receiver.Receive(time.Second)
	require.NoError(t, err)

	require.True(t, sink.has(slog.LevelInfo, "canbus send"))
	require.True(t, sink.has(slog.LevelInfo, "canbus receive"))
}

func TestLoggedBus_TimeoutAndErrorLevels(t *testing.T) {
	lb := NewLoopbackBus()
	sink := &recordSink{}
	wrapped := NewLoggedBus(lb.Open(), slog.New(sink), slog.LevelInfo, netutil.LogAll)

	_, err := wrapped.Receive(0)
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, sink.has(slog.LevelDebug, "canbus receive timeout"))

	require.NoError(t, wrapped.Close())
	_, _ = wrapped.Receive(0)
	require.True(t, sink.has(slog.LevelError, "canbus receive error"))

	require.Error(t, wrapped.SendFrame(MustFrame(0x1, nil)))
	require.True(t, sink.has(slog.LevelError, "canbus send error"))
}

func TestLoggedBus_FilterLimitsRecords(t *testing.T) {
	lb := NewLoopbackBus()
	defer lb.Close()
	sink := &recordSink{}
	tx := NewLoggedBus(lb.Open(), slog.New(sink), slog.LevelInfo, netutil.LogWrite, ExactID(0x200))

	require.NoError(t, tx.SendFrame(MustFrame(0x100, nil)))
	require.Equal(t, 0, sink.count())
	require.NoError(t, tx.SendFrame(MustFrame(0x200, nil)))
	require.Equal(t, 1, sink.count())
}
