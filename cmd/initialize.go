package cmd

import (
	"grimm.is/instanced/internal/ifaddr"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/registry"
	"grimm.is/instanced/internal/validation"
)

// RunInit seeds a registry record for a locally-owned interface from its
// live addresses, so the host itself appears in the generated artifacts
// alongside its DHCP clients.
func RunInit(ifaceName, name string) error {
	if err := validation.ValidateInterfaceName(ifaceName); err != nil {
		return err
	}
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	addrs, err := ifaddr.Lookup(ifaceName)
	if err != nil {
		return err
	}
	mac, err := validation.CanonicalMAC(addrs.MAC)
	if err != nil {
		return err
	}

	_, st, err := setup()
	if err != nil {
		return err
	}

	ev := registry.Bootstrap{MAC: mac, Name: name, IPv4: addrs.IPv4, IPv6: addrs.IPv6}
	changed, err := commit(st, ev)
	if err != nil {
		return err
	}
	if changed {
		logging.WithComponent("init").Info("Instance initialized", "interface", ifaceName, "mac", mac, "name", name)
	}
	return nil
}
