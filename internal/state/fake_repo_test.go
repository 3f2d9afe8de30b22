package state_test

import (
	"sync"

	"talkie/internal/domain"
)

// countingRepo records every write so tests can count disk flushes.
type countingRepo struct {
	mu          sync.Mutex
	primary     []domain.Snapshot
	backups     []domain.Snapshot
	primaryErr  error
	backupErr   error
	readPrimary func() (domain.Snapshot, error)
	readBackup  func() (domain.Snapshot, error)
}

func (r *countingRepo) ReadPrimary() (domain.Snapshot, error) {
	if r.readPrimary != nil {
		return r.readPrimary()
	}
	return domain.Snapshot{}, domain.ErrNoSnapshot
}

func (r *countingRepo) ReadBackup() (domain.Snapshot, error) {
	if r.readBackup != nil {
		return r.readBackup()
	}
	return domain.Snapshot{}, domain.ErrNoSnapshot
}

func (r *countingRepo) WritePrimary(s domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.primaryErr != nil {
		return r.primaryErr
	}
	r.primary = append(r.primary, s)
	return nil
}

func (r *countingRepo) WriteBackup(s domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backupErr != nil {
		return r.backupErr
	}
	r.backups = append(r.backups, s)
	return nil
}

func (r *countingRepo) primaryWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.primary)
}

func (r *countingRepo) backupWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backups)
}

func (r *countingRepo) lastPrimary() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.primary) == 0 {
		return domain.Snapshot{}
	}
	return r.primary[len(r.primary)-1]
}
