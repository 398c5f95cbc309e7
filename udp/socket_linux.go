//go:build linux

package udp

import (
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/notnil/linkio/netutil"
)

// Socket is a UDP socket in sender or receiver mode. The zero value is
// closed. Opening an open Socket closes it first. A Socket must be driven
// by one goroutine at a time.
type Socket struct {
	fd     int
	open   bool
	dest   netutil.ResolvedAddress
	target unix.Sockaddr // nil in receiver mode
}

var _ Endpoint = (*Socket)(nil)

// DialSender returns a Socket opened with OpenSender.
func DialSender(port int, destination string, family netutil.Family) (*Socket, error) {
	s := new(Socket)
	if err := s.OpenSender(port, destination, family); err != nil {
		return nil, err
	}
	return s, nil
}

// ListenReceiver returns a Socket opened with OpenReceiver.
func ListenReceiver(port int, bindTo string, family netutil.Family) (*Socket, error) {
	s := new(Socket)
	if err := s.OpenReceiver(port, bindTo, family); err != nil {
		return nil, err
	}
	return s, nil
}

// broadcastAddr maps the Broadcast keyword to an address: the IPv4 limited
// broadcast address for IPv4, the IPv6 all-nodes group otherwise.
func broadcastAddr(family netutil.Family) string {
	if family == netutil.IPv4 {
		return "255.255.255.255"
	}
	return "ff02::1"
}

// OpenSender opens a socket that sends to destination:port. The destination
// is resolved once here and reused by every Send.
func (s *Socket) OpenSender(port int, destination string, family netutil.Family) (err error) {
	if err := s.Close(); err != nil {
		return err
	}
	broadcast := destination == Broadcast
	if broadcast {
		destination = broadcastAddr(family)
	}
	dest, err := netutil.ResolveRemote(netutil.Datagram, destination, port, family)
	if err != nil {
		return err
	}
	sa, err := dest.Sockaddr()
	if err != nil {
		return err
	}

	fd, err := newSocket(dest)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, unix.Close(fd))
		}
	}()
	if broadcast {
		if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
			return fmt.Errorf("udp: enable broadcast: %w", err)
		}
	}

	s.fd, s.open, s.dest, s.target = fd, true, dest, sa
	return nil
}

// OpenReceiver opens a socket bound to bindTo:port. An empty bindTo binds
// the wildcard address of the family.
func (s *Socket) OpenReceiver(port int, bindTo string, family netutil.Family) (err error) {
	if err := s.Close(); err != nil {
		return err
	}
	local, ok := netutil.ResolveLocal(netutil.Datagram, port, bindTo, family)
	if !ok {
		return fmt.Errorf("%w: local %q port %d (%s)", netutil.ErrUnresolvable, bindTo, port, family)
	}
	sa, err := local.Sockaddr()
	if err != nil {
		return err
	}

	fd, err := newSocket(local)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, unix.Close(fd))
		}
	}()
	if err = unix.Bind(fd, sa); err != nil {
		return fmt.Errorf("udp: bind %s: %w", local, err)
	}

	s.fd, s.open, s.dest, s.target = fd, true, netutil.ResolvedAddress{}, nil
	return nil
}

func newSocket(a netutil.ResolvedAddress) (int, error) {
	fd, err := unix.Socket(a.Domain(), a.SockType()|unix.SOCK_CLOEXEC, unix.IPPROTO_UDP)
	if err != nil {
		return -1, fmt.Errorf("udp: socket: %w", err)
	}
	return fd, nil
}

// Fd returns the socket descriptor, or -1 when closed.
func (s *Socket) Fd() int {
	if !s.open {
		return -1
	}
	return s.fd
}

// Destination returns the resolved destination of a sender, or the zero
// ResolvedAddress for a receiver.
func (s *Socket) Destination() netutil.ResolvedAddress { return s.dest }

// LocalAddr returns the address the socket is bound to. For a receiver
// opened on port 0 it reports the port the kernel chose.
func (s *Socket) LocalAddr() (netip.AddrPort, error) {
	if !s.open {
		return netip.AddrPort{}, ErrClosed
	}
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("udp: getsockname: %w", err)
	}
	ap, ok := netutil.SockaddrAddrPort(sa)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("udp: unexpected local address %T", sa)
	}
	return ap, nil
}

// Close releases the descriptor. Closing a closed socket is a no-op.
func (s *Socket) Close() error {
	if !s.open {
		return nil
	}
	fd := s.fd
	s.fd, s.open, s.dest, s.target = -1, false, netutil.ResolvedAddress{}, nil
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("udp: close: %w", err)
	}
	return nil
}

// Send transmits p as one datagram to the cached destination.
func (s *Socket) Send(p []byte) error {
	if !s.open {
		return ErrClosed
	}
	if s.target == nil {
		return ErrNoDestination
	}
	if err := unix.Sendto(s.fd, p, 0, s.target); err != nil {
		return fmt.Errorf("udp: send to %s: %w", s.dest, err)
	}
	return nil
}

// Receive reads one datagram into buf, truncated to len(buf).
func (s *Socket) Receive(buf []byte, timeout time.Duration) (int, error) {
	n, _, err := s.recv(buf, timeout)
	return n, err
}

// ReceiveFrom reads one datagram into buf and reports the sender's IP as
// numeric text without an IPv6 zone.
func (s *Socket) ReceiveFrom(buf []byte, timeout time.Duration) (int, string, error) {
	n, from, err := s.recv(buf, timeout)
	if err != nil {
		return 0, "", err
	}
	return n, netutil.IPString(from), nil
}

func (s *Socket) recv(buf []byte, timeout time.Duration) (int, unix.Sockaddr, error) {
	if !s.open {
		return 0, nil, ErrClosed
	}
	if timeout >= 0 {
		ready, err := netutil.Wait(timeout, s.fd)
		if err != nil {
			return 0, nil, fmt.Errorf("udp: wait: %w", err)
		}
		if ready.Empty() {
			return 0, nil, ErrTimeout
		}
	}
	n, from, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("udp: receive: %w", err)
	}
	if n < len(buf) {
		buf[n] = 0
	}
	return n, from, nil
}
