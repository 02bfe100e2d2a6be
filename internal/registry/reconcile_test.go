package registry

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	macA = "aa:bb:cc:dd:ee:ff"
	macB = "11:22:33:44:55:66"
)

func upsert(mac, addr, name string) UpsertAddress {
	ev := UpsertAddress{MAC: mac, Name: name}
	if addr != "" {
		ev.Addr = netip.MustParseAddr(addr)
	}
	return ev
}

// checkInvariants asserts the global uniqueness rules that must hold after
// every reconciliation step.
func checkInvariants(t *testing.T, r *Registry) {
	t.Helper()
	names := map[string]string{}
	fields := map[string]string{}
	for _, mac := range r.MACs() {
		inst := r.Get(mac)
		if inst.Name != "" {
			if prev, ok := names[inst.Name]; ok {
				t.Fatalf("name %q held by both %s and %s", inst.Name, prev, mac)
			}
			names[inst.Name] = mac
		}
		for field, v := range map[string]string{"ipv4": inst.IPv4, "ipv6_gua": inst.IPv6GUA, "ipv6_ula": inst.IPv6ULA} {
			if v == "" {
				continue
			}
			key := field + "/" + v
			if prev, ok := fields[key]; ok {
				t.Fatalf("%s %s held by both %s and %s", field, v, prev, mac)
			}
			fields[key] = mac
		}
	}
}

func TestCreateDerivesLinkLocal(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "")))

	inst := r.Get(macA)
	require.NotNil(t, inst)
	assert.Equal(t, "", inst.Name)
	assert.Equal(t, "111.112.113.114", inst.IPv4)
	assert.Equal(t, "fe80::a8bb:ccff:fedd:eeff", inst.IPv6LLA)
	assert.Empty(t, inst.IPv6GUA)
	assert.Empty(t, inst.IPv6ULA)
	checkInvariants(t, r)
}

func TestUpsertIdempotent(t *testing.T) {
	r := New()
	ev := upsert(macA, "111.112.113.114", "carrot")
	require.True(t, Reconcile(r, ev))
	require.False(t, Reconcile(r, ev), "second application must report no change")

	before, err := json.Marshal(r)
	require.NoError(t, err)
	Reconcile(r, ev)
	after, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpsertRoutesAddressFields(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "")))
	require.True(t, Reconcile(r, upsert(macA, "2001:db8::10", "")))
	require.True(t, Reconcile(r, upsert(macA, "fdb8:7a32:ffb5::1234", "")))

	inst := r.Get(macA)
	assert.Equal(t, "111.112.113.114", inst.IPv4)
	assert.Equal(t, "2001:db8::10", inst.IPv6GUA)
	assert.Equal(t, "fdb8:7a32:ffb5::1234", inst.IPv6ULA)
	checkInvariants(t, r)
}

func TestLinkLocalUpdateIgnored(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "")))

	// A link-local address arriving as an update must not replace the
	// creation-time derivation, and must not count as a change.
	assert.False(t, Reconcile(r, upsert(macA, "fe80::1", "")))
	assert.Equal(t, "fe80::a8bb:ccff:fedd:eeff", r.Get(macA).IPv6LLA)
}

func TestLinkLocalCreatesRecordButStoresNothing(t *testing.T) {
	r := New()
	// First sight with only a link-local address still creates the record.
	require.True(t, Reconcile(r, upsert(macA, "fe80::1", "box")))

	inst := r.Get(macA)
	require.NotNil(t, inst)
	assert.Equal(t, "box", inst.Name)
	assert.Equal(t, "fe80::a8bb:ccff:fedd:eeff", inst.IPv6LLA)
	assert.Empty(t, inst.IPv4)
}

func TestNameFirstClaimWinsAtCreation(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "radish")))
	require.True(t, Reconcile(r, upsert(macB, "111.112.113.115", "radish")))

	// The second record is created unnamed, the holder keeps the name.
	assert.Equal(t, "radish", r.Get(macA).Name)
	assert.Equal(t, "", r.Get(macB).Name)
	checkInvariants(t, r)
}

func TestNameNotAppliedToExistingRecord(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "")))

	// A lease hostname only names a record at creation time.
	assert.False(t, Reconcile(r, upsert(macA, "111.112.113.114", "carrot")))
	assert.Equal(t, "", r.Get(macA).Name)
}

func TestAddressEviction(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "radish")))
	require.True(t, Reconcile(r, upsert(macB, "10.0.0.2", "")))

	// B claims A's address: latest claim wins, A loses the field but
	// survives as a record.
	require.True(t, Reconcile(r, upsert(macB, "111.112.113.114", "")))
	assert.Equal(t, "", r.Get(macA).IPv4)
	assert.Equal(t, "111.112.113.114", r.Get(macB).IPv4)
	assert.Equal(t, "radish", r.Get(macA).Name, "eviction must not touch the name")
	checkInvariants(t, r)
}

func TestRenameEviction(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "radish")))
	require.True(t, Reconcile(r, upsert(macB, "111.112.113.115", "")))

	require.True(t, Reconcile(r, Rename{MAC: macB, Name: "radish"}))
	assert.Equal(t, "", r.Get(macA).Name)
	assert.Equal(t, "radish", r.Get(macB).Name)
	checkInvariants(t, r)

	// Renaming to the current name is a no-op.
	assert.False(t, Reconcile(r, Rename{MAC: macB, Name: "radish"}))
}

func TestRenameNonexistentIsNoop(t *testing.T) {
	r := New()
	assert.False(t, Reconcile(r, Rename{MAC: macA, Name: "radish"}))
	assert.Equal(t, 0, r.Len())
}

func TestRemove(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "111.112.113.114", "")))
	assert.True(t, Reconcile(r, Remove{MAC: macA}))
	assert.Equal(t, 0, r.Len())
	assert.False(t, Reconcile(r, Remove{MAC: macA}))
}

func TestBootstrapSeedsFromObservedAddresses(t *testing.T) {
	r := New()
	ev := Bootstrap{
		MAC:  macA,
		Name: "host",
		IPv4: netip.MustParseAddr("192.0.2.1"),
		IPv6: []netip.Addr{
			netip.MustParseAddr("2001:db8::1"),
			netip.MustParseAddr("fdb8:7a32:ffb5::1"),
			netip.MustParseAddr("fe80::1234"),
		},
	}
	require.True(t, Reconcile(r, ev))

	inst := r.Get(macA)
	require.NotNil(t, inst)
	assert.Equal(t, "host", inst.Name)
	assert.Equal(t, "192.0.2.1", inst.IPv4)
	assert.Equal(t, "2001:db8::1", inst.IPv6GUA)
	assert.Equal(t, "fdb8:7a32:ffb5::1", inst.IPv6ULA)
	// Observed link-local wins over EUI-64 derivation.
	assert.Equal(t, "fe80::1234", inst.IPv6LLA)
	checkInvariants(t, r)
}

func TestBootstrapDerivesLinkLocalWhenNoneObserved(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, Bootstrap{MAC: macA, Name: "host", IPv4: netip.MustParseAddr("192.0.2.1")}))
	assert.Equal(t, "fe80::a8bb:ccff:fedd:eeff", r.Get(macA).IPv6LLA)
}

func TestBootstrapReplacesAndEvictsName(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macB, "10.0.0.2", "host")))
	require.True(t, Reconcile(r, Bootstrap{MAC: macA, Name: "host", IPv4: netip.MustParseAddr("192.0.2.1")}))

	assert.Equal(t, "host", r.Get(macA).Name)
	assert.Equal(t, "", r.Get(macB).Name)
	checkInvariants(t, r)
}

// TestUniquenessUnderEventSequence drives a longer mixed sequence and checks
// the invariants after every step.
func TestUniquenessUnderEventSequence(t *testing.T) {
	r := New()
	macs := []string{macA, macB, "aa:aa:aa:aa:aa:01", "aa:aa:aa:aa:aa:02"}
	events := []Event{
		upsert(macs[0], "192.0.2.1", "one"),
		upsert(macs[1], "192.0.2.2", "two"),
		upsert(macs[2], "192.0.2.1", "one"),
		upsert(macs[3], "2001:db8::7", "two"),
		Rename{MAC: macs[3], Name: "one"},
		upsert(macs[1], "2001:db8::7", ""),
		Remove{MAC: macs[2]},
		upsert(macs[2], "fdb8:7a32:ffb5::9", "three"),
		Rename{MAC: macs[0], Name: "three"},
	}
	for i, ev := range events {
		Reconcile(r, ev)
		t.Run(fmt.Sprintf("step-%d", i), func(t *testing.T) {
			checkInvariants(t, r)
		})
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	r := New()
	require.True(t, Reconcile(r, upsert(macA, "192.0.2.1", "")))
	assert.False(t, Reconcile(r, unknownEvent{}))
	assert.Equal(t, 1, r.Len())
}

type unknownEvent struct{}

func (unknownEvent) isEvent() {}
