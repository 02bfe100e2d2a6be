// Package validation holds the boundary checks for everything that enters the
// registry from the outside: MAC addresses, instance names, the hosts domain
// suffix, and the base-id/group identifiers taken from the environment.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	// Canonical MAC form: lower-case, colon-separated, 48-bit.
	macRegex = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)

	// Instance names double as DNS labels and nftables set name parts.
	nameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

	// Domain suffix appended to generated host names, leading dot included.
	domainRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]*$`)

	// Base id is spliced into file paths, so keep it to the safe set.
	baseIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// CanonicalMAC parses a MAC address and returns it in canonical lower-case
// colon-separated form. Only 48-bit addresses are accepted; EUI-64 and
// Infiniband hardware addresses have no place in the registry.
func CanonicalMAC(s string) (string, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	if len(hw) != 6 {
		return "", fmt.Errorf("invalid MAC address %q: not 48-bit", s)
	}
	return strings.ToLower(hw.String()), nil
}

// ValidateMAC checks that s already is a canonical MAC address.
func ValidateMAC(s string) error {
	if !macRegex.MatchString(s) {
		return fmt.Errorf("invalid MAC address: %s", s)
	}
	return nil
}

// ValidateName checks an instance name (hostname label).
func ValidateName(s string) error {
	if s == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !nameRegex.MatchString(s) {
		return fmt.Errorf("invalid name: %s (must start with a letter, then letters, digits, or hyphens)", s)
	}
	return nil
}

// ValidateDomain checks the hosts domain suffix. Empty is allowed; the
// configuration layer supplies the default.
func ValidateDomain(s string) error {
	if !domainRegex.MatchString(s) {
		return fmt.Errorf("invalid hosts domain: %s", s)
	}
	return nil
}

// ValidateBaseID checks the registry base id used as a file name suffix.
func ValidateBaseID(s string) error {
	if s == "" {
		return fmt.Errorf("base id cannot be empty")
	}
	if !baseIDRegex.MatchString(s) {
		return fmt.Errorf("invalid base id: %s (must be alphanumeric or underscore)", s)
	}
	return nil
}

// ValidateInterfaceName checks a network interface name (for bootstrap).
func ValidateInterfaceName(s string) error {
	if s == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if len(s) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", s)
	}
	if strings.ContainsAny(s, "/ \t\n\"") {
		return fmt.Errorf("invalid interface name: %s", s)
	}
	return nil
}
