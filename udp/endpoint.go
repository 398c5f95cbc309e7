package udp

import (
	"errors"
	"time"

	"github.com/notnil/linkio/netutil"
)

// Endpoint is a datagram transport with timeout-bounded receive.
type Endpoint interface {
	// Send transmits one datagram to the endpoint's destination.
	Send(p []byte) error

	// Receive reads one datagram into buf. A non-negative timeout bounds the
	// wait; Forever blocks in the read.
	Receive(buf []byte, timeout time.Duration) (int, error)

	// ReceiveFrom is Receive that also reports the sender's numeric IP.
	ReceiveFrom(buf []byte, timeout time.Duration) (int, string, error)

	Close() error
}

// Broadcast is the destination keyword that selects the broadcast address.
const Broadcast = "broadcast"

// Forever is the receive timeout that never expires.
const Forever = netutil.Forever

var (
	ErrClosed        = errors.New("udp: socket closed")
	ErrNoDestination = errors.New("udp: socket has no destination (opened as receiver)")

	// ErrTimeout is returned by Receive when no datagram arrived in time.
	ErrTimeout = netutil.ErrTimeout
)
