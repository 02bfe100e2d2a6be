// Package artifacts projects a reconciled registry into the three generated
// files: the hosts resolution table, the ARP/NDP anti-spoofing rule chains,
// and the typed nftables address sets.
package artifacts

import (
	"strings"

	"grimm.is/instanced/internal/registry"
)

// Output holds the rendered artifacts and their element counts. The counts
// feed the summary log line, nothing else.
type Output struct {
	Hosts  string
	Chains string
	Sets   string

	HostRows int
	Rules    int
	SetCount int
}

// Generate renders all artifacts for the registry. The domain suffix and
// group names are validated at the configuration boundary; generation itself
// cannot fail.
func Generate(reg *registry.Registry, domain string, groups []string) Output {
	var out Output
	out.Hosts, out.HostRows = buildHosts(reg, domain)

	col := newCollector(groups)
	out.Chains, out.Rules = buildChains(reg, col)
	out.Sets, out.SetCount = buildSets(col)
	return out
}

// normalizeSetName maps a group name to an nftables-safe identifier part.
// Hyphens are legal in instance names but not in nftables identifiers.
func normalizeSetName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
