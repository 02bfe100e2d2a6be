package cmd

import (
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/registry"
	"grimm.is/instanced/internal/validation"
)

// RunRename changes the name of an existing record. Any other record holding
// the name loses it. Renaming an unknown MAC does nothing.
func RunRename(macArg, name string) error {
	mac, err := validation.CanonicalMAC(macArg)
	if err != nil {
		return err
	}
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	_, st, err := setup()
	if err != nil {
		return err
	}

	changed, err := commit(st, registry.Rename{MAC: mac, Name: name})
	if err != nil {
		return err
	}
	if changed {
		logging.WithComponent("rename").Info("Instance renamed", "mac", mac, "name", name)
	}
	return nil
}
