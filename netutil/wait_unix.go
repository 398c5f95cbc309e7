//go:build unix

package netutil

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// readable covers hang-up and error so that the caller's next read reports them.
const readable = unix.POLLIN | unix.POLLHUP | unix.POLLERR

// Wait blocks until at least one of fds is readable or timeout elapses.
// Negative descriptors are skipped and never contribute a bit. With no
// valid descriptor it returns immediately with an empty mask. A timeout
// yields an empty mask and a nil error.
//
// Wait consumes no data. Descriptors of different families (a CAN socket
// and a UDP socket, a pipe) may be mixed.
func Wait(timeout time.Duration, fds ...int) (Ready, error) {
	if len(fds) > MaxDescriptors {
		return 0, ErrTooManyDescriptors
	}

	var (
		pfds  [MaxDescriptors]unix.PollFd
		slots [MaxDescriptors]int
		n     int
	)
	for i, fd := range fds {
		if fd < 0 {
			continue
		}
		pfds[n] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
		slots[n] = i
		n++
	}
	if n == 0 {
		return 0, nil
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		count, err := unix.Poll(pfds[:n], pollTimeout(timeout, deadline))
		if err == unix.EINTR {
			// The runtime's preemption signals interrupt poll; resume with the time left.
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("netutil: poll: %w", err)
		}
		if count == 0 {
			return 0, nil
		}
		var r Ready
		for j := 0; j < n; j++ {
			rev := pfds[j].Revents
			if rev&unix.POLLNVAL != 0 {
				return 0, fmt.Errorf("netutil: descriptor %d: %w", pfds[j].Fd, unix.EBADF)
			}
			if rev&readable != 0 {
				r |= 1 << uint(slots[j])
			}
		}
		return r, nil
	}
}

// WaitForData is Wait with every failure folded into an empty mask.
func WaitForData(timeout time.Duration, fds ...int) Ready {
	r, err := Wait(timeout, fds...)
	if err != nil {
		return 0
	}
	return r
}

// pollTimeout converts the time left before deadline into poll(2)
// milliseconds, rounding up so a short wait never becomes a busy poll.
func pollTimeout(timeout time.Duration, deadline time.Time) int {
	if timeout < 0 {
		return -1
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0
	}
	return int((left + time.Millisecond - 1) / time.Millisecond)
}
