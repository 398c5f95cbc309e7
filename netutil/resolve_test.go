package netutil

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveLocal_Wildcards(t *testing.T) {
	cases := []struct {
		family Family
		want   string
		fam    Family
	}{
		{Unspec, "0.0.0.0:5000", IPv4},
		{IPv4, "0.0.0.0:5000", IPv4},
		{IPv6, "[::]:5000", IPv6},
	}
	for _, tc := range cases {
		got, ok := ResolveLocal(Datagram, 5000, "", tc.family)
		require.True(t, ok, "family %v", tc.family)
		require.Equal(t, tc.want, got.Addr.String())
		require.Equal(t, tc.fam, got.Family)
		require.Equal(t, Datagram, got.Type)
	}
}

func TestResolveLocal_Failures(t *testing.T) {
	cases := []struct {
		name   string
		typ    SocketType
		port   int
		bindTo string
		family Family
	}{
		{"unknown family", Datagram, 1, "", Family(42)},
		{"negative port", Datagram, -1, "", IPv4},
		{"port too large", Datagram, 70000, "", IPv4},
		{"bad socket type", SocketType(0), 1, "", IPv4},
		{"family mismatch", Datagram, 1, "127.0.0.1", IPv6},
	}
	for _, tc := range cases {
		got, ok := ResolveLocal(tc.typ, tc.port, tc.bindTo, tc.family)
		require.False(t, ok, tc.name)
		require.True(t, got.IsZero(), tc.name)
	}
}

func TestResolveLocal_SpecificAddress(t *testing.T) {
	got, ok := ResolveLocal(Stream, 80, "127.0.0.1", Unspec)
	require.True(t, ok)
	require.Equal(t, IPv4, got.Family)
	require.Equal(t, "127.0.0.1:80", got.String())
}

func TestResolveRemote_Numeric(t *testing.T) {
	got, err := ResolveRemote(Datagram, "127.0.0.1", 9000, IPv4)
	require.NoError(t, err)
	require.Equal(t, IPv4, got.Family)

	sa, err := got.Sockaddr()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", IPString(sa))

	got, err = ResolveRemote(Datagram, "::1", 9000, Unspec)
	require.NoError(t, err)
	require.Equal(t, IPv6, got.Family)

	got, err = ResolveRemote(Datagram, "::ffff:10.0.0.1", 1, IPv4)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:1", got.String())
}

func TestResolveRemote_Localhost(t *testing.T) {
	got, err := ResolveRemote(Datagram, "localhost", 53, IPv4)
	require.NoError(t, err)
	require.True(t, got.Addr.Addr().IsLoopback())
}

func TestResolveRemote_Failures(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := ResolveRemoteContext(ctx, Datagram, "no-such-host.invalid", 1, Unspec)
	require.ErrorIs(t, err, ErrUnresolvable)

	_, err = ResolveRemote(Datagram, "", 1, Unspec)
	require.ErrorIs(t, err, ErrUnresolvable)

	_, err = ResolveRemote(Datagram, "::1", 1, IPv4)
	require.ErrorIs(t, err, ErrUnresolvable)

	_, err = ResolveRemote(Datagram, "127.0.0.1", 1, Family(7))
	require.ErrorIs(t, err, ErrUnknownFamily)
}

func TestAddressText_StripsZone(t *testing.T) {
	require.Equal(t, "fe80::1", AddrString(netip.MustParseAddr("fe80::1%eth0")))
	require.Equal(t, "127.0.0.1", AddrString(netip.MustParseAddr("127.0.0.1")))
	require.Equal(t, "", AddrString(netip.Addr{}))
}

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{
		"": Unspec, "any": Unspec, "IPv4": IPv4, "inet": IPv4, "6": IPv6, "inet6": IPv6,
	} {
		got, err := ParseFamily(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFamily("ipx")
	require.ErrorIs(t, err, ErrUnknownFamily)
}

func TestLocalIP_Loopback(t *testing.T) {
	ip := LocalIP("lo", IPv4)
	if ip == "" {
		t.Skip("no IPv4 address on lo")
	}
	require.Equal(t, "127.0.0.1", ip)
	require.Equal(t, "", LocalIP("no-such-if0", IPv4))
}
