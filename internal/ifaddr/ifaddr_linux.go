//go:build linux

package ifaddr

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Lookup reads the MAC and current addresses of the named interface via
// netlink. Secondary IPv4 addresses and temporary IPv6 addresses are
// skipped, matching what a registry record can hold.
func Lookup(name string) (Addrs, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return Addrs{}, fmt.Errorf("looking up interface %s: %w", name, err)
	}

	hw := link.Attrs().HardwareAddr
	if len(hw) != 6 {
		return Addrs{}, fmt.Errorf("interface %s has no usable MAC address", name)
	}
	out := Addrs{MAC: strings.ToLower(hw.String())}

	v4s, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return Addrs{}, fmt.Errorf("listing IPv4 addresses of %s: %w", name, err)
	}
	for _, a := range v4s {
		if a.Flags&unix.IFA_F_SECONDARY != 0 {
			continue
		}
		if ip4 := a.IP.To4(); ip4 != nil {
			out.IPv4 = netip.AddrFrom4([4]byte(ip4))
			break
		}
	}

	v6s, err := netlink.AddrList(link, netlink.FAMILY_V6)
	if err != nil {
		return Addrs{}, fmt.Errorf("listing IPv6 addresses of %s: %w", name, err)
	}
	for _, a := range v6s {
		if a.Flags&unix.IFA_F_TEMPORARY != 0 {
			continue
		}
		ip := a.IP.To16()
		if ip == nil || a.IP.To4() != nil {
			continue
		}
		out.IPv6 = append(out.IPv6, netip.AddrFrom16([16]byte(ip)))
	}

	return out, nil
}
