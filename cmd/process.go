package cmd

import (
	"grimm.is/instanced/internal/artifacts"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/store"
)

// RunProcess regenerates the artifacts from the persisted registry. Unless
// force is set, it only runs when a reconciliation marked the registry dirty
// since the last generation; otherwise it returns store.ErrNotDirty, which
// the caller maps to the distinguished "nothing to do" exit status.
//
// The dirty flag is consumed before generation, under the same lock that
// guards reconciliation, so a lease landing during generation marks the
// registry dirty again for the next run.
func RunProcess(force bool) error {
	cfg, st, err := setup()
	if err != nil {
		return err
	}
	log := logging.WithComponent("process")

	return st.WithLock(func() error {
		dirty, err := st.ConsumeDirty()
		if err != nil {
			return err
		}
		if !dirty && !force {
			return store.ErrNotDirty
		}

		reg, err := st.Load()
		if err != nil {
			return err
		}

		out := artifacts.Generate(reg, cfg.HostsDomain, cfg.AddressSets)

		if err := st.WriteArtifact(st.HostsPath(), out.Hosts); err != nil {
			return err
		}
		if err := st.WriteArtifact(st.ChainsPath(), out.Chains); err != nil {
			return err
		}
		if err := st.WriteArtifact(st.SetsPath(), out.Sets); err != nil {
			return err
		}

		log.Info("Artifacts written",
			"instances", reg.Len(),
			"hosts", out.HostRows,
			"rules", out.Rules,
			"sets", out.SetCount)
		return nil
	})
}
