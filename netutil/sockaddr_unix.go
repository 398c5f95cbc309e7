//go:build unix

package netutil

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Domain returns the socket domain (AF_INET or AF_INET6) for a.
func (a ResolvedAddress) Domain() int {
	if a.Family == IPv6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

// SockType returns SOCK_STREAM or SOCK_DGRAM for a.
func (a ResolvedAddress) SockType() int {
	if a.Type == Stream {
		return unix.SOCK_STREAM
	}
	return unix.SOCK_DGRAM
}

// Sockaddr builds the concrete socket address for a. IPv6 zones are
// translated to interface indexes.
func (a ResolvedAddress) Sockaddr() (unix.Sockaddr, error) {
	ip := a.Addr.Addr()
	port := int(a.Addr.Port())
	switch a.Family {
	case IPv4:
		ip = ip.Unmap()
		if !ip.Is4() {
			return nil, fmt.Errorf("netutil: %s is not an IPv4 address", ip)
		}
		return &unix.SockaddrInet4{Port: port, Addr: ip.As4()}, nil
	case IPv6:
		sa := &unix.SockaddrInet6{Port: port, Addr: ip.As16()}
		if zone := ip.Zone(); zone != "" {
			idx, err := zoneIndex(zone)
			if err != nil {
				return nil, err
			}
			sa.ZoneId = uint32(idx)
		}
		return sa, nil
	}
	return nil, ErrNoAddress
}

func zoneIndex(zone string) (int, error) {
	if n, err := strconv.Atoi(zone); err == nil {
		return n, nil
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, fmt.Errorf("netutil: zone %q: %w", zone, err)
	}
	return ifi.Index, nil
}

// SockaddrAddrPort extracts the IP and port of an IPv4 or IPv6 socket
// address. Zones are not carried over.
func SockaddrAddrPort(sa unix.Sockaddr) (netip.AddrPort, bool) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), true
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port)), true
	}
	return netip.AddrPort{}, false
}

// IPString renders the IP of sa as numeric text without a zone suffix.
// It returns "" for addresses that are not IPv4 or IPv6.
func IPString(sa unix.Sockaddr) string {
	ap, ok := SockaddrAddrPort(sa)
	if !ok {
		return ""
	}
	return AddrString(ap.Addr())
}
