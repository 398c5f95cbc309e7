// Package udp wraps a datagram socket in the linkio transport contract.
//
// A Socket is opened in one of two modes. OpenSender resolves a destination
// once and sends every datagram there; the keyword "broadcast" selects the
// family's broadcast address. OpenReceiver binds to a local port. Receive
// copies one datagram into the caller's buffer and, when there is room,
// writes a NUL byte after it so the buffer can be used as C-style text.
// Use the returned length for binary payloads.
package udp
