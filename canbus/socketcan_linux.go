//go:build linux

package canbus

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/notnil/linkio/netutil"
)

// Socket is a raw SocketCAN socket bound to one interface. The zero value
// is closed and ready for Bind. A Socket may be closed and bound again any
// number of times. It must be driven by one goroutine at a time.
type Socket struct {
	fd    int
	open  bool
	iface string
}

var _ Bus = (*Socket)(nil)

// DialSocketCAN opens a raw CAN socket bound to the given interface name (e.g., "can0").
func DialSocketCAN(iface string) (*Socket, error) {
	s := new(Socket)
	if err := s.Bind(iface); err != nil {
		return nil, err
	}
	return s, nil
}

// Bind opens a CAN_RAW socket and binds it to iface. A socket that is
// already bound is closed first. On failure no descriptor is left open.
func (s *Socket) Bind(iface string) (err error) {
	if len(iface) == 0 || len(iface) >= unix.IFNAMSIZ {
		return fmt.Errorf("%w: %q", ErrInterfaceName, iface)
	}
	if err := s.Close(); err != nil {
		return err
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return fmt.Errorf("canbus: socket: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, unix.Close(fd))
		}
	}()

	// The index lookup runs on the CAN socket itself, as ip(8) does.
	idx, err := interfaceIndex(fd, iface)
	if err != nil {
		return err
	}
	if err = unix.Bind(fd, &unix.SockaddrCAN{Ifindex: idx}); err != nil {
		return fmt.Errorf("canbus: bind %s: %w", iface, err)
	}

	s.fd, s.open, s.iface = fd, true, iface
	return nil
}

// Fd returns the socket descriptor, or -1 when closed.
func (s *Socket) Fd() int {
	if !s.open {
		return -1
	}
	return s.fd
}

// Interface returns the name of the bound interface.
func (s *Socket) Interface() string { return s.iface }

// Close releases the descriptor. Closing a closed socket is a no-op.
func (s *Socket) Close() error {
	if !s.open {
		return nil
	}
	fd := s.fd
	s.fd, s.open = -1, false
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("canbus: close %s: %w", s.iface, err)
	}
	return nil
}

// Send transmits a data frame with the given identifier. A payload longer
// than 8 bytes is rejected with ErrPayloadTooLarge and nothing is written.
func (s *Socket) Send(id uint32, payload []byte) error {
	f, err := NewFrame(id, payload)
	if err != nil {
		return err
	}
	return s.SendFrame(f)
}

// SendFrame writes one frame as a single can_frame record.
func (s *Socket) SendFrame(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	if !s.open {
		return ErrClosed
	}
	var buf [FrameSize]byte
	frame.encode(&buf)
	n, err := unix.Write(s.fd, buf[:])
	if err != nil {
		return fmt.Errorf("canbus: write %s: %w", s.iface, err)
	}
	if n != FrameSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, FrameSize)
	}
	return nil
}

// Receive waits up to timeout for a frame and reads exactly one record.
func (s *Socket) Receive(timeout time.Duration) (Frame, error) {
	if !s.open {
		return Frame{}, ErrClosed
	}
	ready, err := netutil.Wait(timeout, s.fd)
	if err != nil {
		return Frame{}, fmt.Errorf("canbus: wait %s: %w", s.iface, err)
	}
	if ready.Empty() {
		return Frame{}, ErrTimeout
	}

	var buf [FrameSize]byte
	n, err := unix.Read(s.fd, buf[:])
	if err != nil {
		return Frame{}, fmt.Errorf("canbus: read %s: %w", s.iface, err)
	}
	if n != FrameSize {
		return Frame{}, fmt.Errorf("%w: %d of %d bytes", ErrShortRead, n, FrameSize)
	}
	var f Frame
	if err := f.UnmarshalBinary(buf[:]); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// SetFilters installs kernel receive filters. A frame is delivered when it
// matches any filter. With no filters every frame is accepted.
func (s *Socket) SetFilters(filters ...Filter) error {
	if !s.open {
		return ErrClosed
	}
	if len(filters) == 0 {
		filters = []Filter{{}}
	}
	kf := make([]unix.CanFilter, len(filters))
	for i, f := range filters {
		kf[i] = unix.CanFilter{Id: f.canID(), Mask: f.Mask}
	}
	if err := unix.SetsockoptCanRawFilter(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, kf); err != nil {
		return fmt.Errorf("canbus: set filters: %w", err)
	}
	return nil
}

// SetLoopback controls whether frames sent by this socket are echoed to
// other sockets on the same host. The kernel default is on.
func (s *Socket) SetLoopback(on bool) error {
	return s.setBool(unix.CAN_RAW_LOOPBACK, on, "loopback")
}

// SetReceiveOwn controls whether this socket receives its own frames.
// The kernel default is off.
func (s *Socket) SetReceiveOwn(on bool) error {
	return s.setBool(unix.CAN_RAW_RECV_OWN_MSGS, on, "recv own msgs")
}

func (s *Socket) setBool(opt int, on bool, name string) error {
	if !s.open {
		return ErrClosed
	}
	v := 0
	if on {
		v = 1
	}
	if err := unix.SetsockoptInt(s.fd, unix.SOL_CAN_RAW, opt, v); err != nil {
		return fmt.Errorf("canbus: set %s: %w", name, err)
	}
	return nil
}
