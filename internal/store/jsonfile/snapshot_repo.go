package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"talkie/internal/domain"
)

// BackupSuffix is appended to the primary path to name the backup file.
const BackupSuffix = ".backup"

// SnapshotRepo stores the state snapshot as an indented JSON document with a
// sibling backup file.
type SnapshotRepo struct {
	path       string
	backupPath string
}

func NewSnapshotRepo(path string) *SnapshotRepo {
	return &SnapshotRepo{path: path, backupPath: path + BackupSuffix}
}

var _ domain.SnapshotRepository = (*SnapshotRepo)(nil)

// Path returns the primary file path.
func (r *SnapshotRepo) Path() string { return r.path }

// BackupPath returns the backup file path.
func (r *SnapshotRepo) BackupPath() string { return r.backupPath }

func (r *SnapshotRepo) ReadPrimary() (domain.Snapshot, error) {
	return readSnapshot(r.path)
}

func (r *SnapshotRepo) ReadBackup() (domain.Snapshot, error) {
	return readSnapshot(r.backupPath)
}

func (r *SnapshotRepo) WritePrimary(s domain.Snapshot) error {
	if err := writeSnapshot(r.path, s); err != nil {
		return fmt.Errorf("write primary snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) WriteBackup(s domain.Snapshot) error {
	if err := writeSnapshot(r.backupPath, s); err != nil {
		return fmt.Errorf("write backup snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, domain.ErrNoSnapshot
		}
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	var s domain.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	s.Normalize()
	return s, nil
}

// writeSnapshot writes to a temp file and renames it over path so readers
// never observe a half-written document.
func writeSnapshot(path string, s domain.Snapshot) error {
	s.Normalize()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
