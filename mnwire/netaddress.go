// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"encoding/binary"
	"io"
	"net"
	"strconv"
)

// NetworkClass categorizes the reachable network of a service address.
type NetworkClass int

// Network classes for masternode service addresses.
const (
	// NetworkUnroutable is an address that cannot be used to reach the
	// masternode from the public network.
	NetworkUnroutable NetworkClass = iota

	// NetworkIPv4 is a routable IPv4 address.
	NetworkIPv4

	// NetworkIPv6 is a routable IPv6 address.
	NetworkIPv6

	// NetworkOnion is a tor v2 address encoded in the onioncat IPv6
	// range.
	NetworkOnion
)

// String returns the network class as a human-readable string.
func (n NetworkClass) String() string {
	switch n {
	case NetworkIPv4:
		return "ipv4"
	case NetworkIPv6:
		return "ipv6"
	case NetworkOnion:
		return "onion"
	}
	return "unroutable"
}

// onionCatNet is the IPv6 prefix used to tunnel tor addresses
// (fd87:d87e:eb43::/48).
var onionCatNet = net.IPNet{
	IP:   net.ParseIP("fd87:d87e:eb43::"),
	Mask: net.CIDRMask(48, 128),
}

// rfc1918Nets are the private IPv4 ranges.
var rfc1918Nets = []net.IPNet{
	{IP: net.ParseIP("10.0.0.0"), Mask: net.CIDRMask(8, 32)},
	{IP: net.ParseIP("172.16.0.0"), Mask: net.CIDRMask(12, 32)},
	{IP: net.ParseIP("192.168.0.0"), Mask: net.CIDRMask(16, 32)},
}

// ServiceAddress is the network endpoint a masternode serves from.  It is
// serialized as a 16-byte IP (IPv4 addresses use the v4-in-v6 mapping, tor
// addresses use the onioncat mapping) followed by a big-endian port, which
// is the legacy address encoding the overlay protocol inherited.
type ServiceAddress struct {
	IP   net.IP
	Port uint16
}

// NewServiceAddress returns a service address for the given IP and port.
func NewServiceAddress(ip net.IP, port uint16) ServiceAddress {
	return ServiceAddress{IP: ip, Port: port}
}

// Class returns the network class of the address.
func (sa *ServiceAddress) Class() NetworkClass {
	if sa.IP == nil {
		return NetworkUnroutable
	}
	if onionCatNet.Contains(sa.IP) {
		return NetworkOnion
	}
	if ip4 := sa.IP.To4(); ip4 != nil {
		if !sa.isRoutable() {
			return NetworkUnroutable
		}
		return NetworkIPv4
	}
	if !sa.isRoutable() {
		return NetworkUnroutable
	}
	return NetworkIPv6
}

func (sa *ServiceAddress) isRoutable() bool {
	if sa.IP.IsLoopback() || sa.IP.IsUnspecified() {
		return false
	}
	if sa.IsRFC1918() {
		return false
	}
	if sa.IP.IsLinkLocalUnicast() || sa.IP.IsLinkLocalMulticast() {
		return false
	}
	return true
}

// IsRFC1918 returns whether the address is in one of the private IPv4
// ranges.
func (sa *ServiceAddress) IsRFC1918() bool {
	ip4 := sa.IP.To4()
	if ip4 == nil {
		return false
	}
	for _, ipNet := range rfc1918Nets {
		if ipNet.Contains(ip4) {
			return true
		}
	}
	return false
}

// IsLocal returns whether the address is a loopback address.
func (sa *ServiceAddress) IsLocal() bool {
	return sa.IP != nil && sa.IP.IsLoopback()
}

// String returns the address in host:port form.
func (sa *ServiceAddress) String() string {
	host := ""
	if sa.IP != nil {
		host = sa.IP.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(int(sa.Port)))
}

// readServiceAddress reads an encoded service address from r.
func readServiceAddress(r io.Reader, sa *ServiceAddress) error {
	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	sa.IP = net.IP(ip[:])
	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}
	sa.Port = binary.BigEndian.Uint16(port[:])
	return nil
}

// writeServiceAddress serializes sa to w.
func writeServiceAddress(w io.Writer, sa *ServiceAddress) error {
	var ip [16]byte
	copy(ip[:], sa.IP.To16())
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}
	var port [2]byte
	binary.BigEndian.PutUint16(port[:], sa.Port)
	_, err := w.Write(port[:])
	return err
}
