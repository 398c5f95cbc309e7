//go:build linux

package udp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notnil/linkio/netutil"
)

// loopbackPair opens a receiver on an ephemeral loopback port and a sender
// aimed at it.
func loopbackPair(t *testing.T, host string, family netutil.Family) (tx, rx *Socket) {
	t.Helper()
	rx, err := ListenReceiver(0, host, family)
	if err != nil {
		t.Skipf("cannot bind %s: %v", host, err)
	}
	t.Cleanup(func() { rx.Close() })

	local, err := rx.LocalAddr()
	require.NoError(t, err)
	require.NotZero(t, local.Port())

	tx, err = DialSender(int(local.Port()), host, family)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Close() })
	return tx, rx
}

func TestSocket_DatagramLengthsAndTerminator(t *testing.T) {
	tx, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)

	const capacity = 64
	for _, l := range []int{0, 1, 5, capacity - 1, capacity} {
		msg := bytes.Repeat([]byte{'a'}, l)
		require.NoError(t, tx.Send(msg))

		buf := bytes.Repeat([]byte{0xFF}, capacity)
		n, err := rx.Receive(buf, time.Second)
		require.NoError(t, err, "len %d", l)
		require.Equal(t, l, n)
		require.Equal(t, msg, buf[:n])
		if l < capacity {
			require.Equal(t, byte(0), buf[l], "len %d: missing terminator", l)
		}
	}
}

func TestSocket_OversizedDatagramIsTruncated(t *testing.T) {
	tx, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)

	require.NoError(t, tx.Send([]byte("0123456789")))
	buf := make([]byte, 4)
	n, err := rx.Receive(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "0123", string(buf))
}

func TestSocket_ReceiveFromReportsSender(t *testing.T) {
	tx, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)

	require.NoError(t, tx.Send([]byte("ping")))
	buf := make([]byte, 16)
	n, from, err := rx.ReceiveFrom(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "127.0.0.1", from)
}

func TestSocket_IPv6Loopback(t *testing.T) {
	tx, rx := loopbackPair(t, "::1", netutil.IPv6)

	require.NoError(t, tx.Send([]byte("v6")))
	buf := make([]byte, 8)
	n, from, err := rx.ReceiveFrom(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "::1", from)
}

func TestSocket_ReceiveTimeout(t *testing.T) {
	_, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)

	start := time.Now()
	_, err := rx.Receive(make([]byte, 8), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, time.Since(start) >= 50*time.Millisecond)
}

func TestSocket_ReceiverHasNoDestination(t *testing.T) {
	_, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)
	require.ErrorIs(t, rx.Send([]byte("x")), ErrNoDestination)
	require.True(t, rx.Destination().IsZero())
}

func TestSocket_ClosedOperations(t *testing.T) {
	var s Socket
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, -1, s.Fd())
	require.ErrorIs(t, s.Send([]byte("x")), ErrClosed)
	_, err := s.Receive(make([]byte, 1), 0)
	require.ErrorIs(t, err, ErrClosed)
	_, err = s.LocalAddr()
	require.ErrorIs(t, err, ErrClosed)
}

func TestSocket_CloseTwiceThenReopen(t *testing.T) {
	tx, rx := loopbackPair(t, "127.0.0.1", netutil.IPv4)
	local, err := rx.LocalAddr()
	require.NoError(t, err)

	require.NoError(t, tx.Close())
	require.NoError(t, tx.Close())
	require.NoError(t, tx.OpenSender(int(local.Port()), "127.0.0.1", netutil.IPv4))
	require.NoError(t, tx.Send([]byte("again")))

	buf := make([]byte, 16)
	n, err := rx.Receive(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, "again", string(buf[:n]))

	// Reopening as a receiver drops the cached destination.
	require.NoError(t, tx.OpenReceiver(0, "127.0.0.1", netutil.IPv4))
	require.ErrorIs(t, tx.Send([]byte("x")), ErrNoDestination)
}

func TestSocket_BroadcastSender(t *testing.T) {
	s, err := DialSender(9, Broadcast, netutil.IPv4)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, "255.255.255.255", s.Destination().Addr.Addr().String())
	require.Equal(t, 9, int(s.Destination().Addr.Port()))
}

func TestSocket_OpenFailuresLeaveSocketClosed(t *testing.T) {
	var s Socket
	require.ErrorIs(t, s.OpenSender(9, "::1", netutil.IPv4), netutil.ErrUnresolvable)
	require.Equal(t, -1, s.Fd())

	require.ErrorIs(t, s.OpenReceiver(70000, "", netutil.IPv4), netutil.ErrUnresolvable)
	require.Equal(t, -1, s.Fd())

	// 192.0.2.1 (TEST-NET-1) is not assigned locally, so bind fails.
	require.Error(t, s.OpenReceiver(0, "192.0.2.1", netutil.IPv4))
	require.Equal(t, -1, s.Fd())
}
