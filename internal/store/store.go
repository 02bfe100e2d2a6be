// Package store persists the instance registry and its companion files. One
// registry instance is a family of files sharing a base path: the JSON
// document, the dirty flag, the lock file, and the three generated
// artifacts. All access across processes is serialized by an advisory lock
// on the lock file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grimm.is/instanced/internal/registry"
)

var (
	// ErrLockTimeout is returned when the advisory lock could not be
	// acquired within the bounded wait.
	ErrLockTimeout = errors.New("timed out waiting for registry lock")

	// ErrNotDirty is returned by the processing trigger when the registry
	// has not changed since artifacts were last generated and no force
	// override was given.
	ErrNotDirty = errors.New("registry unchanged since last processing")
)

// Store is the file-backed registry store. The zero value is not usable;
// use New.
type Store struct {
	base string

	// LockTimeout bounds the wait for the advisory lock.
	LockTimeout time.Duration
	// LockRetryInterval is the pause between non-blocking lock attempts.
	LockRetryInterval time.Duration
}

// New creates a store rooted at basePath, with baseID (possibly empty)
// appended as a file name suffix. basePath and baseID are validated by the
// configuration layer.
func New(basePath, baseID string) *Store {
	base := basePath
	if baseID != "" {
		base += "-" + baseID
	}
	return &Store{
		base:              base,
		LockTimeout:       10 * time.Second,
		LockRetryInterval: 100 * time.Millisecond,
	}
}

// RegistryPath returns the path of the persisted registry document.
func (s *Store) RegistryPath() string { return s.base + ".json" }

// DirtyPath returns the path of the dirty flag file.
func (s *Store) DirtyPath() string { return s.base + ".updated" }

// LockPath returns the path of the advisory lock file.
func (s *Store) LockPath() string { return s.base + ".lock" }

// HostsPath returns the path of the generated resolution table.
func (s *Store) HostsPath() string { return s.base + ".hosts" }

// ChainsPath returns the path of the generated rule chains.
func (s *Store) ChainsPath() string { return s.base + ".nftables_chains" }

// SetsPath returns the path of the generated address sets.
func (s *Store) SetsPath() string { return s.base + ".nftables_sets" }

// Load reads the registry document. A missing file yields an empty registry,
// not an error: the first lease event creates it.
func (s *Store) Load() (*registry.Registry, error) {
	data, err := os.ReadFile(s.RegistryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return registry.New(), nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	reg := registry.New()
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", s.RegistryPath(), err)
	}
	return reg, nil
}

// Save writes the registry document atomically: the new state is fully
// written and synced to a temporary file before it replaces the old one, so
// a crash mid-save leaves the prior state intact.
func (s *Store) Save(reg *registry.Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := s.writeFileAtomic(s.RegistryPath(), append(data, '\n')); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// MarkDirty records that the registry changed since artifacts were last
// generated.
func (s *Store) MarkDirty() error {
	f, err := os.OpenFile(s.DirtyPath(), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("marking registry dirty: %w", err)
	}
	return f.Close()
}

// ConsumeDirty clears the dirty flag and reports whether it was set. Read
// and clear are one step; callers hold the lock, so no update can interleave.
func (s *Store) ConsumeDirty() (bool, error) {
	err := os.Remove(s.DirtyPath())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("clearing dirty flag: %w", err)
}

// WriteArtifact writes one generated artifact atomically.
func (s *Store) WriteArtifact(path, content string) error {
	if err := s.writeFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("writing artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
