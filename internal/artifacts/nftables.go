package artifacts

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strings"

	"grimm.is/instanced/internal/registry"
)

// categories in output order. v4 is IPv4; v6 is the union of global and
// unique-local IPv6; g6, u6, l6 are the individual IPv6 scopes.
var categories = []string{"v4", "v6", "g6", "u6", "l6"}

// bucket holds the per-category address lists of one collection.
type bucket map[string][]string

func newBucket() bucket {
	b := make(bucket, len(categories))
	for _, c := range categories {
		b[c] = nil
	}
	return b
}

// collector accumulates set members while the rule chains are rendered, the
// same single pass the rules come from. The implicit "all" collection covers
// every instance; a named collection covers the one instance whose name
// equals the configured group name.
type collector struct {
	all     bucket
	order   []string // configured group names, rendered after "all"
	byGroup map[string]bucket
}

func newCollector(groups []string) *collector {
	c := &collector{
		all:     newBucket(),
		byGroup: make(map[string]bucket),
	}
	for _, g := range groups {
		if _, dup := c.byGroup[g]; dup {
			continue
		}
		c.order = append(c.order, g)
		c.byGroup[g] = newBucket()
	}
	return c
}

// add records an address under a category, for the all-collection and for
// the instance's named group when one is configured.
func (c *collector) add(instanceName, category, addr string) {
	c.all[category] = append(c.all[category], addr)
	if g, ok := c.byGroup[instanceName]; ok {
		g[category] = append(g[category], addr)
	}
}

// buildChains renders the two guard chains. Both are linear permit chains
// closed by an unconditional drop, meant to be jumped to from the relevant
// hook rule (usage is documented in the emitted comments).
func buildChains(reg *registry.Registry, col *collector) (string, int) {
	var b strings.Builder
	count := 0

	// ARP guard: a reply is only let through when the claimed sender IPv4
	// and the frame's source MAC match one registered pairing.
	b.WriteString("# Use: ether type arp jump instances_drop_arp\n")
	b.WriteString("chain instances_drop_arp {\n")
	for _, mac := range reg.MACs() {
		inst := reg.Get(mac)
		if inst.IPv4 == "" {
			continue
		}
		fmt.Fprintf(&b, "    arp saddr ip %s counter ether saddr %s counter return%s\n",
			inst.IPv4, mac, ruleComment(inst.Name))
		count++
		col.add(inst.Name, "v4", inst.IPv4)
	}
	b.WriteString("    counter drop comment \"lockdown\" # prepend to log to dmesg: log prefix \"[nftables] dropped ARP: \"\n")
	count++
	b.WriteString("}\n")

	// ND guard: a Neighbor Advertisement is only let through when its
	// Target Address and the frame's source MAC match one registered
	// pairing. The Target Address sits at bit 384 of the IPv6 packet
	// (byte 24 of the ICMPv6 payload), 128 bits wide, per RFC 4861.
	b.WriteString("# Use: ether type ip6 icmpv6 type nd-neighbor-advert jump instances_drop_ndp\n")
	b.WriteString("chain instances_drop_ndp {\n")
	for _, mac := range reg.MACs() {
		inst := reg.Get(mac)
		for _, f := range []struct {
			addr     string
			category string
		}{
			{inst.IPv6GUA, "g6"},
			{inst.IPv6ULA, "u6"},
			{inst.IPv6LLA, "l6"},
		} {
			if f.addr == "" {
				continue
			}
			fmt.Fprintf(&b, "    @nh,384,128 0x%s counter ether saddr %s counter return%s\n",
				addrHex(f.addr), mac, ruleComment(inst.Name))
			count++
			if f.category != "l6" {
				col.add(inst.Name, "v6", f.addr)
			}
			col.add(inst.Name, f.category, f.addr)
		}
	}
	b.WriteString("    counter drop comment \"lockdown\" # prepend to log to dmesg: log prefix \"[nftables] dropped NDP: \"\n")
	count++
	b.WriteString("}\n")

	return b.String(), count
}

// buildSets renders one typed set declaration per (collection, category)
// pair. nftables rejects an empty elements literal, so the clause is omitted
// entirely for empty buckets.
func buildSets(col *collector) (string, int) {
	var b strings.Builder
	count := 0

	writeOne := func(setName string, category string, addrs []string) {
		fmt.Fprintf(&b, "# Use: @%s\n", setName)
		fmt.Fprintf(&b, "set %s {\n", setName)
		if category == "v4" {
			b.WriteString("    type ipv4_addr\n")
		} else {
			b.WriteString("    type ipv6_addr\n")
		}
		if len(addrs) > 0 {
			b.WriteString("    elements = { ")
			for _, a := range addrs {
				b.WriteString(a)
				b.WriteString(", ")
			}
			b.WriteString("}\n")
		}
		b.WriteString("}\n")
		count++
	}

	for _, category := range categories {
		writeOne(fmt.Sprintf("all_%s.instance", category), category, col.all[category])
	}
	for _, group := range col.order {
		for _, category := range categories {
			writeOne(fmt.Sprintf("%s.%s.instance", normalizeSetName(group), category),
				category, col.byGroup[group][category])
		}
	}

	return b.String(), count
}

// ruleComment renders the per-rule annotation for a named instance.
func ruleComment(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" comment %q", name)
}

// addrHex returns the full 128-bit address as 32 hex digits for the raw
// payload match.
func addrHex(addr string) string {
	a, err := netip.ParseAddr(addr)
	if err != nil || !a.Is6() {
		// Registry addresses are canonical by construction; an invalid
		// one here means corrupt persisted state, surfaced as an
		// impossible match rather than a panic.
		return strings.Repeat("0", 32)
	}
	b := a.As16()
	return hex.EncodeToString(b[:])
}
