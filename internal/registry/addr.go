package registry

import (
	"fmt"
	"net"
	"net/netip"
)

// Class partitions addresses the way the registry stores them: one IPv4 slot
// and one slot per IPv6 scope.
type Class int

const (
	// ClassNone is anything the registry has no slot for (multicast,
	// loopback, unspecified).
	ClassNone Class = iota
	ClassIPv4
	// ClassGUA is a globally routable IPv6 unicast address.
	ClassGUA
	// ClassULA is a unique local address, RFC 4193 fc00::/7.
	ClassULA
	// ClassLLA is a link-local address, fe80::/10.
	ClassLLA
)

var ulaPrefix = netip.MustParsePrefix("fc00::/7")

// Classify returns the registry slot an address belongs to. Mapped
// IPv4-in-IPv6 addresses classify as IPv4. The scopes are checked most
// specific first: link-local and unique-local are both "global unicast" to
// the standard library, so the order here is load-bearing.
func Classify(a netip.Addr) Class {
	if !a.IsValid() {
		return ClassNone
	}
	a = a.Unmap()
	if a.Is4() {
		return ClassIPv4
	}
	switch {
	case a.IsLinkLocalUnicast():
		return ClassLLA
	case ulaPrefix.Contains(a):
		return ClassULA
	case a.IsGlobalUnicast():
		return ClassGUA
	}
	return ClassNone
}

// LinkLocalFromMAC derives the EUI-64 IPv6 link-local address for a 48-bit
// MAC address per RFC 4291 Appendix A: invert the universal/local bit of the
// first octet, insert ff:fe between the two 24-bit halves, and prefix with
// fe80::.
func LinkLocalFromMAC(mac string) (netip.Addr, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return netip.Addr{}, fmt.Errorf("invalid MAC address %q: not 48-bit", mac)
	}
	var b [16]byte
	b[0] = 0xfe
	b[1] = 0x80
	b[8] = hw[0] ^ 0x02
	b[9] = hw[1]
	b[10] = hw[2]
	b[11] = 0xff
	b[12] = 0xfe
	b[13] = hw[3]
	b[14] = hw[4]
	b[15] = hw[5]
	return netip.AddrFrom16(b), nil
}

// canonical returns the canonical text form stored in the registry.
func canonical(a netip.Addr) string {
	return a.Unmap().String()
}
