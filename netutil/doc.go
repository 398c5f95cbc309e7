// Package netutil holds the pieces shared by the CAN and UDP transports:
// a readiness multiplexer for up to four descriptors and a small address
// resolver that turns host and port arguments into socket addresses.
//
// Timeouts are expressed as time.Duration. A negative duration (Forever)
// blocks until data arrives; zero polls without blocking.
package netutil
