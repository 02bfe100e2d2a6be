// Package cmd implements the instanced command verbs. Each Run function is
// a complete invocation: load configuration, take the registry lock, do the
// work, release. Nothing here is long-running.
package cmd

import (
	"grimm.is/instanced/internal/config"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/registry"
	"grimm.is/instanced/internal/store"
)

// setup loads the configuration, applies the log level, and opens the store.
func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Default().SetLevel(logging.ParseLevel(cfg.LogLevel))
	return cfg, store.New(cfg.BasePath, cfg.BaseID), nil
}

// commit reconciles one event into the persisted registry under the lock.
// The registry file and dirty flag are only touched when the event actually
// changed something.
func commit(st *store.Store, ev registry.Event) (bool, error) {
	changed := false
	err := st.WithLock(func() error {
		reg, err := st.Load()
		if err != nil {
			return err
		}
		if !registry.Reconcile(reg, ev) {
			return nil
		}
		if err := st.Save(reg); err != nil {
			return err
		}
		if err := st.MarkDirty(); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}
