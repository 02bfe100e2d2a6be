package artifacts

import (
	"fmt"
	"strings"

	"grimm.is/instanced/internal/registry"
)

// buildHosts renders the resolution table: one row per populated address
// field of every named instance. Unnamed instances resolve to nothing.
//
// The primary name is <name><domain>, except link-local addresses which use
// <name>.l6<domain> so that link-local resolution stays opt-in. Extra
// aliases narrow resolution to one address kind (.v4, .v6, .g6, .u6).
func buildHosts(reg *registry.Registry, domain string) (string, int) {
	var b strings.Builder
	count := 0

	for _, mac := range reg.MACs() {
		inst := reg.Get(mac)
		name := inst.Name
		if name == "" {
			continue
		}

		if inst.IPv4 != "" {
			fmt.Fprintf(&b, "%s %s%s %s.v4%s\n", inst.IPv4, name, domain, name, domain)
			count++
		}
		if inst.IPv6GUA != "" {
			fmt.Fprintf(&b, "%s %s%s %s.v6%s %s.g6%s\n", inst.IPv6GUA, name, domain, name, domain, name, domain)
			count++
		}
		if inst.IPv6ULA != "" {
			fmt.Fprintf(&b, "%s %s%s %s.v6%s %s.u6%s\n", inst.IPv6ULA, name, domain, name, domain, name, domain)
			count++
		}
		if inst.IPv6LLA != "" {
			fmt.Fprintf(&b, "%s %s.l6%s\n", inst.IPv6LLA, name, domain)
			count++
		}
	}

	return b.String(), count
}
