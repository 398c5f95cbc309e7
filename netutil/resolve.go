package netutil

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Family selects the IP version used for resolution.
type Family int

const (
	Unspec Family = iota
	IPv4
	IPv6
)

func (f Family) String() string {
	switch f {
	case Unspec:
		return "unspec"
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// network returns the net package network name for lookups.
func (f Family) network() (string, bool) {
	switch f {
	case Unspec:
		return "ip", true
	case IPv4:
		return "ip4", true
	case IPv6:
		return "ip6", true
	}
	return "", false
}

// ParseFamily accepts "", "unspec", "any", "ipv4", "inet", "4", "ipv6", "inet6" and "6".
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspec", "any":
		return Unspec, nil
	case "ipv4", "inet", "4":
		return IPv4, nil
	case "ipv6", "inet6", "6":
		return IPv6, nil
	}
	return Unspec, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// SocketType is the kind of socket the address will be used with.
type SocketType int

const (
	Stream SocketType = iota + 1
	Datagram
)

func (t SocketType) valid() bool { return t == Stream || t == Datagram }

// ResolvedAddress is the outcome of resolution: a concrete family, socket
// type and numeric address with port. The zero value means "no result".
type ResolvedAddress struct {
	Family Family
	Type   SocketType
	Addr   netip.AddrPort
}

// IsZero reports whether a is the "no result" sentinel.
func (a ResolvedAddress) IsZero() bool { return a.Family == Unspec }

func (a ResolvedAddress) String() string {
	if a.IsZero() {
		return "<none>"
	}
	return a.Addr.String()
}

// ResolveLocal resolves the local address a socket of type typ should bind
// to. An empty bindTo selects the wildcard address of the family (IPv4 when
// family is Unspec). Any failure returns the zero ResolvedAddress and false.
func ResolveLocal(typ SocketType, port int, bindTo string, family Family) (ResolvedAddress, bool) {
	return ResolveLocalContext(context.Background(), typ, port, bindTo, family)
}

// ResolveLocalContext is ResolveLocal bounded by ctx.
func ResolveLocalContext(ctx context.Context, typ SocketType, port int, bindTo string, family Family) (ResolvedAddress, bool) {
	if !typ.valid() || !validPort(port) {
		return ResolvedAddress{}, false
	}
	if _, ok := family.network(); !ok {
		return ResolvedAddress{}, false
	}
	var addr netip.Addr
	if bindTo == "" {
		addr = netip.IPv4Unspecified()
		if family == IPv6 {
			addr = netip.IPv6Unspecified()
		}
	} else {
		var err error
		addr, err = lookup(ctx, bindTo, family)
		if err != nil {
			return ResolvedAddress{}, false
		}
	}
	return resolved(typ, addr, port), true
}

// ResolveRemote resolves a host name or numeric address of a remote peer.
// The first address in resolver order wins.
func ResolveRemote(typ SocketType, host string, port int, family Family) (ResolvedAddress, error) {
	return ResolveRemoteContext(context.Background(), typ, host, port, family)
}

// ResolveRemoteContext is ResolveRemote bounded by ctx.
func ResolveRemoteContext(ctx context.Context, typ SocketType, host string, port int, family Family) (ResolvedAddress, error) {
	if !typ.valid() {
		return ResolvedAddress{}, fmt.Errorf("%w: invalid socket type %d", ErrUnresolvable, typ)
	}
	if !validPort(port) {
		return ResolvedAddress{}, fmt.Errorf("%w: invalid port %d", ErrUnresolvable, port)
	}
	if _, ok := family.network(); !ok {
		return ResolvedAddress{}, fmt.Errorf("%w: %w", ErrUnresolvable, ErrUnknownFamily)
	}
	if host == "" {
		return ResolvedAddress{}, fmt.Errorf("%w: empty host", ErrUnresolvable)
	}
	addr, err := lookup(ctx, host, family)
	if err != nil {
		return ResolvedAddress{}, err
	}
	return resolved(typ, addr, port), nil
}

func lookup(ctx context.Context, host string, family Family) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = normalize(addr, family)
		if !familyMatches(addr, family) {
			return netip.Addr{}, fmt.Errorf("%w: %s is not an %s address", ErrUnresolvable, host, family)
		}
		return addr, nil
	}
	network, _ := family.network()
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, network, host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %w", ErrUnresolvable, host, err)
	}
	for _, a := range addrs {
		a = normalize(a, family)
		if familyMatches(a, family) {
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s: no %s addresses", ErrUnresolvable, host, family)
}

func normalize(a netip.Addr, family Family) netip.Addr {
	if family != IPv6 && a.Is4In6() {
		return a.Unmap()
	}
	return a
}

func familyMatches(a netip.Addr, family Family) bool {
	switch family {
	case IPv4:
		return a.Is4()
	case IPv6:
		return a.Is6()
	}
	return a.IsValid()
}

func resolved(typ SocketType, addr netip.Addr, port int) ResolvedAddress {
	fam := IPv6
	if addr.Is4() {
		fam = IPv4
	}
	return ResolvedAddress{Family: fam, Type: typ, Addr: netip.AddrPortFrom(addr, uint16(port))}
}

func validPort(port int) bool { return port >= 0 && port <= 0xFFFF }

// AddrString renders addr as numeric text with any IPv6 zone removed.
// The zone is a host-local interface handle and is not portable.
func AddrString(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.WithZone("").String()
}

// LocalAddr returns the first address of family assigned to the named
// interface. Unspec accepts either version.
func LocalAddr(iface string, family Family) (netip.Addr, bool) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return netip.Addr{}, false
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return netip.Addr{}, false
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if familyMatches(addr, family) {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

// LocalIP is LocalAddr rendered as text; it returns "" when the interface
// has no address of the family.
func LocalIP(iface string, family Family) string {
	addr, ok := LocalAddr(iface, family)
	if !ok {
		return ""
	}
	return AddrString(addr)
}
