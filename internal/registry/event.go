package registry

import "net/netip"

// Event is the closed set of registry mutations. The reconciler ignores any
// variant it does not recognize, which keeps forward-compatible event
// sources harmless.
type Event interface {
	isEvent()
}

// UpsertAddress records an observed lease address for a MAC. An invalid
// (zero) Addr carries no address. Name is the hostname proposed by the lease
// and is only honored when the event creates the record; existing records
// are renamed solely through Rename.
type UpsertAddress struct {
	MAC  string
	Addr netip.Addr
	Name string
}

// Bootstrap seeds (or reseeds) the record for a locally-owned interface from
// its observed addresses. The record is replaced wholesale; an observed
// link-local address wins over EUI-64 derivation.
type Bootstrap struct {
	MAC  string
	Name string
	IPv4 netip.Addr
	IPv6 []netip.Addr
}

// Rename changes the name of an existing record, evicting the name from any
// other holder.
type Rename struct {
	MAC  string
	Name string
}

// Remove deletes a record. This is the only event that ever deletes: lease
// expiry does not reach the reconciler, the registry is append-mostly.
type Remove struct {
	MAC string
}

func (UpsertAddress) isEvent() {}
func (Bootstrap) isEvent()     {}
func (Rename) isEvent()        {}
func (Remove) isEvent()        {}
