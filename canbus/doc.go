// Package canbus provides classical CAN frames and a Linux SocketCAN
// transport with timeout-bounded receive.
//
// It includes:
//   - A Frame type with validation and the bit-exact struct can_frame codec
//   - Socket, a raw CAN_RAW socket bound to one interface (linux-only)
//   - Kernel receive filters (Filter) with the same matching rules in Go
//   - An in-memory loopback bus for tests and simulations
//   - A slog-logged Bus decorator
//   - Interface helpers: index lookup, up/down, vcan provisioning (linux-only)
package canbus
