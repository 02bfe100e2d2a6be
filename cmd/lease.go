package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/registry"
	"grimm.is/instanced/internal/validation"
)

// EnvDNSMASQMAC is set by dnsmasq for IPv6 leases, where the positional MAC
// slot carries a DUID instead of a hardware address.
const EnvDNSMASQMAC = "DNSMASQ_MAC"

// RunLease handles a dnsmasq dhcp-script lease event (action "add" or
// "old"). args are the positional arguments after the action: MAC, address,
// then optionally the hostname; anything further is ignored in case dnsmasq
// grows more.
func RunLease(action string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("wrong number of arguments for action %s", action)
	}

	addr, err := netip.ParseAddr(args[1])
	if err != nil {
		return fmt.Errorf("invalid IP address %q: %w", args[1], err)
	}

	macArg := args[0]
	if addr.Unmap().Is6() {
		// For IPv6 the MAC arrives in the environment, if known at all.
		macArg = os.Getenv(EnvDNSMASQMAC)
		if macArg == "" {
			// No update is possible, but this is not an error.
			logging.WithComponent("lease").Debug("Skipping IPv6 lease without MAC", "ip", addr.String())
			return nil
		}
	}
	mac, err := validation.CanonicalMAC(macArg)
	if err != nil {
		return err
	}

	name := ""
	if len(args) >= 3 && args[2] != "" {
		name = args[2]
		if err := validation.ValidateName(name); err != nil {
			return err
		}
	}

	_, st, err := setup()
	if err != nil {
		return err
	}

	changed, err := commit(st, registry.UpsertAddress{MAC: mac, Addr: addr, Name: name})
	if err != nil {
		return err
	}
	if changed {
		logging.WithComponent("lease").Info("Instance updated", "mac", mac, "ip", addr.String(), "name", name)
	}
	return nil
}
