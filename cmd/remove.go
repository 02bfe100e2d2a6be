package cmd

import (
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/registry"
	"grimm.is/instanced/internal/validation"
)

// RunRemove deletes a record. This is the only way a record ever leaves the
// registry; lease expiry does not. Removing an unknown MAC does nothing.
func RunRemove(macArg string) error {
	mac, err := validation.CanonicalMAC(macArg)
	if err != nil {
		return err
	}

	_, st, err := setup()
	if err != nil {
		return err
	}

	changed, err := commit(st, registry.Remove{MAC: mac})
	if err != nil {
		return err
	}
	if changed {
		logging.WithComponent("remove").Info("Instance removed", "mac", mac)
	}
	return nil
}
