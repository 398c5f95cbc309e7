package netutil

import "errors"

var (
	ErrTooManyDescriptors = errors.New("netutil: at most 4 descriptors may be waited on")
	ErrUnresolvable       = errors.New("netutil: address could not be resolved")
	ErrNoAddress          = errors.New("netutil: no resolved address")
	ErrUnknownFamily      = errors.New("netutil: unknown address family")
)

// ErrTimeout is returned by receive operations when no data arrived before
// the deadline. It reports Timeout() == true like the errors of package net.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string   { return "netutil: timeout waiting for data" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
