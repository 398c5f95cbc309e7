package canbus

import (
	"errors"
	"time"

	"github.com/notnil/linkio/netutil"
)

// Bus is a CAN endpoint that sends frames and receives them with a timeout.
type Bus interface {
	// SendFrame transmits one frame.
	SendFrame(frame Frame) error

	// Receive waits up to timeout for the next frame. A negative timeout
	// (Forever) waits indefinitely. ErrTimeout reports that nothing arrived.
	Receive(timeout time.Duration) (Frame, error)

	// Close releases resources. It is safe to call more than once.
	Close() error
}

// Forever is the Receive timeout that never expires.
const Forever = netutil.Forever

var (
	// ErrClosed indicates the bus or endpoint has been closed.
	ErrClosed = errors.New("canbus: closed")

	// ErrTimeout is returned by Receive when no frame arrived in time.
	ErrTimeout = netutil.ErrTimeout

	ErrInterfaceName = errors.New("canbus: invalid interface name")
	ErrShortWrite    = errors.New("canbus: short write")
	ErrShortRead     = errors.New("canbus: short read")
)
