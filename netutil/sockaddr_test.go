//go:build unix

package netutil

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestIPString_IPv6ZoneIsDropped(t *testing.T) {
	sa := &unix.SockaddrInet6{Port: 1, ZoneId: 3, Addr: netip.MustParseAddr("fe80::1").As16()}
	require.Equal(t, "fe80::1", IPString(sa))
	require.Equal(t, "", IPString(&unix.SockaddrUnix{Name: "/tmp/x"}))
}

func TestSockaddr_NumericZone(t *testing.T) {
	a := ResolvedAddress{Family: IPv6, Type: Datagram, Addr: netip.MustParseAddrPort("[fe80::1%5]:9")}
	sa, err := a.Sockaddr()
	require.NoError(t, err)
	in6, ok := sa.(*unix.SockaddrInet6)
	require.True(t, ok)
	require.Equal(t, uint32(5), in6.ZoneId)
	require.Equal(t, 9, in6.Port)
	require.Equal(t, unix.AF_INET6, a.Domain())
	require.Equal(t, unix.SOCK_DGRAM, a.SockType())
}

func TestSockaddr_ZeroValue(t *testing.T) {
	_, err := ResolvedAddress{}.Sockaddr()
	require.ErrorIs(t, err, ErrNoAddress)
}
