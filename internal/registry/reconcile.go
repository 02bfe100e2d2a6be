package registry

// Reconcile merges an event into the registry and reports whether anything
// changed. It is a total function over well-formed input: malformed MACs and
// addresses are rejected at the command boundary and never reach this point.
//
// Two tie-break rules apply throughout. At creation the first claim wins: a
// proposed name already held elsewhere yields an unnamed record. On update
// and rename the latest claim wins: the previous holder loses the contested
// name or address but is never deleted for losing it.
func Reconcile(r *Registry, ev Event) bool {
	switch ev := ev.(type) {
	case UpsertAddress:
		return applyUpsert(r, ev)
	case Bootstrap:
		return applyBootstrap(r, ev)
	case Rename:
		return applyRename(r, ev)
	case Remove:
		return r.Delete(ev.MAC)
	default:
		// Unknown variant from a newer event source: ignore.
		return false
	}
}

func applyUpsert(r *Registry, ev UpsertAddress) bool {
	changed := false

	inst := r.Get(ev.MAC)
	if inst == nil {
		if !ev.Addr.IsValid() {
			return false
		}
		name := ev.Name
		if _, taken := r.findByName(name, ev.MAC); taken {
			// First claim wins at creation: the new record stays
			// unnamed rather than evicting the holder.
			name = ""
		}
		inst = &Instance{Name: name}
		if lla, err := LinkLocalFromMAC(ev.MAC); err == nil {
			inst.IPv6LLA = canonical(lla)
		}
		r.Put(ev.MAC, inst)
		changed = true
	}

	if ev.Addr.IsValid() {
		s := canonical(ev.Addr)
		switch Classify(ev.Addr) {
		case ClassIPv4:
			if inst.IPv4 != s {
				inst.IPv4 = s
				changed = true
			}
		case ClassGUA:
			if inst.IPv6GUA != s {
				inst.IPv6GUA = s
				changed = true
			}
		case ClassULA:
			if inst.IPv6ULA != s {
				inst.IPv6ULA = s
				changed = true
			}
			// ClassLLA: link-local is set once at creation, updates
			// never touch it. ClassNone carries nothing to store.
		}
		if r.evictAddresses(ev.MAC, inst) {
			changed = true
		}
	}

	return changed
}

func applyBootstrap(r *Registry, ev Bootstrap) bool {
	inst := &Instance{}
	if Classify(ev.IPv4) == ClassIPv4 {
		inst.IPv4 = canonical(ev.IPv4)
	}
	for _, a := range ev.IPv6 {
		switch Classify(a) {
		case ClassGUA:
			inst.IPv6GUA = canonical(a)
		case ClassULA:
			inst.IPv6ULA = canonical(a)
		case ClassLLA:
			inst.IPv6LLA = canonical(a)
		}
	}
	if inst.IPv6LLA == "" {
		if lla, err := LinkLocalFromMAC(ev.MAC); err == nil {
			inst.IPv6LLA = canonical(lla)
		}
	}

	prev := r.Get(ev.MAC)
	changed := prev == nil || *prev != *inst
	r.Put(ev.MAC, inst)

	if ev.Name != "" {
		if inst.Name != ev.Name {
			inst.Name = ev.Name
			changed = true
		}
		if r.evictName(ev.MAC, ev.Name) {
			changed = true
		}
	}
	return changed
}

func applyRename(r *Registry, ev Rename) bool {
	inst := r.Get(ev.MAC)
	if inst == nil {
		// Renaming a record that was never seen: nothing to do.
		return false
	}
	changed := false
	if inst.Name != ev.Name {
		inst.Name = ev.Name
		changed = true
	}
	if r.evictName(ev.MAC, ev.Name) {
		changed = true
	}
	return changed
}

// evictAddresses clears any routable address on other records that collides
// with one held by mac. Link-local addresses are derived per record and
// cannot collide meaningfully, so they are left alone.
func (r *Registry) evictAddresses(mac string, inst *Instance) bool {
	changed := false
	for _, other := range r.order {
		if other == mac {
			continue
		}
		o := r.items[other]
		if inst.IPv4 != "" && o.IPv4 == inst.IPv4 {
			o.IPv4 = ""
			changed = true
		}
		if inst.IPv6GUA != "" && o.IPv6GUA == inst.IPv6GUA {
			o.IPv6GUA = ""
			changed = true
		}
		if inst.IPv6ULA != "" && o.IPv6ULA == inst.IPv6ULA {
			o.IPv6ULA = ""
			changed = true
		}
	}
	return changed
}

// evictName clears name from every record other than mac.
func (r *Registry) evictName(mac, name string) bool {
	if name == "" {
		return false
	}
	changed := false
	for _, other := range r.order {
		if other == mac {
			continue
		}
		if o := r.items[other]; o.Name == name {
			o.Name = ""
			changed = true
		}
	}
	return changed
}
