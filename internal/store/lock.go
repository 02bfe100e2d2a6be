package store

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// WithLock runs fn while holding the exclusive advisory lock for this
// registry instance. The lock is acquired with non-blocking attempts inside
// a bounded wait; exceeding LockTimeout fails with ErrLockTimeout rather
// than hanging. The lock is released on every exit path.
func (s *Store) WithLock(fn func() error) error {
	fd, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer unix.Close(fd) // closing the descriptor releases the flock

	return fn()
}

func (s *Store) acquireLock() (int, error) {
	fd, err := unix.Open(s.LockPath(), unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0644)
	if err != nil {
		return -1, fmt.Errorf("opening lock file %s: %w", s.LockPath(), err)
	}

	deadline := time.Now().Add(s.LockTimeout)
	for {
		err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return fd, nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			unix.Close(fd)
			return -1, fmt.Errorf("locking %s: %w", s.LockPath(), err)
		}
		if time.Now().After(deadline) {
			unix.Close(fd)
			return -1, fmt.Errorf("%w: %s", ErrLockTimeout, s.LockPath())
		}
		time.Sleep(s.LockRetryInterval)
	}
}
