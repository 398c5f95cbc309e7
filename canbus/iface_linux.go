//go:build linux

package canbus

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Linux network interface helpers.
//
// Notes:
//   - Changing interface state requires CAP_NET_ADMIN. Without it the calls
//     return EPERM; RequireRootOrCapNetAdmin turns that into a clearer error.
//   - A virtual CAN interface lets the transports be exercised without
//     hardware: EnsureVirtualInterface("vcan0") and then candump vcan0.

// ifreq runs an interface ioctl on a throwaway datagram socket.
func ifreq(name string, req uint, ifr *unix.Ifreq) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	if err := unix.IoctlIfreq(fd, req, ifr); err != nil {
		return fmt.Errorf("canbus: interface %s: %w", name, err)
	}
	return nil
}

func newIfreq(name string) (*unix.Ifreq, error) {
	if len(name) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInterfaceName, name)
	}
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInterfaceName, name)
	}
	return ifr, nil
}

// interfaceIndex resolves name with SIOCGIFINDEX on fd.
func interfaceIndex(fd int, name string) (int, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, ifr); err != nil {
		return 0, fmt.Errorf("canbus: interface %s: %w", name, err)
	}
	return int(ifr.Uint32()), nil
}

// InterfaceIndex returns the kernel index of the named interface.
func InterfaceIndex(name string) (int, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := ifreq(name, unix.SIOCGIFINDEX, ifr); err != nil {
		return 0, err
	}
	return int(ifr.Uint32()), nil
}

func getInterfaceFlags(name string) (uint16, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := ifreq(name, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, err
	}
	return ifr.Uint16(), nil
}

func setInterfaceFlags(name string, flags uint16) error {
	ifr, err := newIfreq(name)
	if err != nil {
		return err
	}
	ifr.SetUint16(flags)
	return ifreq(name, unix.SIOCSIFFLAGS, ifr)
}

// IsInterfaceUp returns true if the Linux network interface has IFF_UP set.
func IsInterfaceUp(name string) (bool, error) {
	flags, err := getInterfaceFlags(name)
	if err != nil {
		return false, err
	}
	return flags&unix.IFF_UP != 0, nil
}

// SetInterfaceUp sets IFF_UP on the given interface. Requires CAP_NET_ADMIN.
func SetInterfaceUp(name string) error {
	flags, err := getInterfaceFlags(name)
	if err != nil {
		return err
	}
	if flags&unix.IFF_UP != 0 {
		return nil
	}
	return RequireRootOrCapNetAdmin(setInterfaceFlags(name, flags|unix.IFF_UP))
}

// SetInterfaceDown clears IFF_UP on the given interface. Requires CAP_NET_ADMIN.
func SetInterfaceDown(name string) error {
	flags, err := getInterfaceFlags(name)
	if err != nil {
		return err
	}
	if flags&unix.IFF_UP == 0 {
		return nil
	}
	return RequireRootOrCapNetAdmin(setInterfaceFlags(name, flags&^unix.IFF_UP))
}

// RequireRootOrCapNetAdmin can be used to map EPERM to a clearer error message.
// It returns a wrapped error advising to grant CAP_NET_ADMIN to the binary.
func RequireRootOrCapNetAdmin(err error) error {
	if errors.Is(err, syscall.EPERM) {
		return fmt.Errorf("operation requires CAP_NET_ADMIN (or root): %w", err)
	}
	return err
}

// EnsureVirtualInterface creates the vcan interface name if it does not
// exist (ip link add dev NAME type vcan) and brings it up.
func EnsureVirtualInterface(name string) error {
	if _, err := newIfreq(name); err != nil {
		return err
	}
	if _, err := net.InterfaceByName(name); err != nil {
		cmd := exec.Command("ip", "link", "add", "dev", name, "type", "vcan")
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ip link add %s type vcan failed: %w; output: %s", name, err, string(out))
		}
	}
	return SetInterfaceUp(name)
}
