// Package linkio exchanges discrete messages over a CAN bus and over UDP/IP
// through one contract: bind or open once, send, receive with a timeout,
// close.
//
// The transports live in subpackages:
//   - canbus: Linux SocketCAN frames and sockets
//   - udp: unicast, broadcast and bound-receiver datagram sockets
//   - netutil: the shared readiness multiplexer and address resolver
//
// Receive operations wait with netutil.Wait before reading, so a caller can
// tell "no data before the deadline" (netutil.ErrTimeout) from data and from
// an I/O failure. Nothing runs in the background.
package linkio
