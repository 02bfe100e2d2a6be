// Package registry maintains the persisted mapping from MAC addresses to
// instance records and reconciles incoming lease and administrative events
// into it. The reconciliation logic is pure: it never touches files, so it
// can be exercised entirely in memory.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Instance is one registry record, keyed externally by MAC address. The name
// may be empty ("unnamed"). Address fields hold canonical text forms; an
// empty field means the instance has no address of that kind. The link-local
// address is fixed at creation and never changed by later events.
type Instance struct {
	Name    string `json:"name"`
	IPv4    string `json:"ipv4,omitempty"`
	IPv6GUA string `json:"ipv6_gua,omitempty"`
	IPv6ULA string `json:"ipv6_ula,omitempty"`
	IPv6LLA string `json:"ipv6_lla,omitempty"`
}

// Registry is an insertion-ordered map from canonical MAC address to
// instance record. Order carries no meaning but is preserved across
// save/load so generated artifacts are deterministic and diff cleanly.
type Registry struct {
	order []string
	items map[string]*Instance
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{items: make(map[string]*Instance)}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.order)
}

// Get returns the record for mac, or nil.
func (r *Registry) Get(mac string) *Instance {
	return r.items[mac]
}

// Put inserts or replaces the record for mac. A replaced record keeps its
// original position.
func (r *Registry) Put(mac string, inst *Instance) {
	if r.items == nil {
		r.items = make(map[string]*Instance)
	}
	if _, ok := r.items[mac]; !ok {
		r.order = append(r.order, mac)
	}
	r.items[mac] = inst
}

// Delete removes the record for mac and reports whether it existed.
func (r *Registry) Delete(mac string) bool {
	if _, ok := r.items[mac]; !ok {
		return false
	}
	delete(r.items, mac)
	for i, m := range r.order {
		if m == mac {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// MACs returns the record keys in insertion order.
func (r *Registry) MACs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// findByName returns the MAC of the record holding name, skipping exceptMAC.
// Empty names never match: unnamed records are not name holders.
func (r *Registry) findByName(name, exceptMAC string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, mac := range r.order {
		if mac == exceptMAC {
			continue
		}
		if r.items[mac].Name == name {
			return mac, true
		}
	}
	return "", false
}

// MarshalJSON encodes the registry as a JSON object with keys in insertion
// order. encoding/json sorts map keys, so this is done by hand.
func (r *Registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, mac := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(mac)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.items[mac])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (r *Registry) UnmarshalJSON(data []byte) error {
	r.order = nil
	r.items = make(map[string]*Instance)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding registry: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding registry: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding registry: %w", err)
		}
		mac, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decoding registry: non-string key %v", tok)
		}
		var inst Instance
		if err := dec.Decode(&inst); err != nil {
			return fmt.Errorf("decoding registry record %s: %w", mac, err)
		}
		r.Put(mac, &inst)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding registry: %w", err)
	}
	return nil
}
