//go:build !linux

package ifaddr

import "fmt"

// Lookup is only implemented on Linux, where netlink is available.
func Lookup(name string) (Addrs, error) {
	return Addrs{}, fmt.Errorf("interface address lookup for %s requires linux", name)
}
