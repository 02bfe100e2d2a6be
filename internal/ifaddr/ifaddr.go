// Package ifaddr reads the live addresses of a local network interface, the
// data source for bootstrapping the interface's own registry record.
package ifaddr

import "net/netip"

// Addrs is the observed address state of one interface. IPv4 is the primary
// address (secondaries are not supported); IPv6 holds all non-temporary
// addresses regardless of scope. A zero IPv4 means none was configured.
type Addrs struct {
	MAC  string
	IPv4 netip.Addr
	IPv6 []netip.Addr
}
