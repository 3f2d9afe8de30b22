package state

import (
	"errors"

	"github.com/rs/zerolog/log"

	"talkie/internal/domain"
)

// LoadSource tells which path LoadWithFallback took.
type LoadSource string

const (
	LoadedPrimary LoadSource = "primary"
	LoadedBackup  LoadSource = "backup"
	LoadedFresh   LoadSource = "fresh"
)

// LoadResult is the state recovered at startup.
type LoadResult struct {
	Snapshot domain.Snapshot
	Source   LoadSource
}

// LoadWithFallback reads the primary snapshot, falling back to the backup
// (which is then written back as the new primary) and finally to an empty
// state. This is the only place the state is read from disk.
func LoadWithFallback(repo domain.SnapshotRepository) LoadResult {
	snap, primaryErr := repo.ReadPrimary()
	if primaryErr == nil {
		return LoadResult{Snapshot: snap, Source: LoadedPrimary}
	}
	if !errors.Is(primaryErr, domain.ErrNoSnapshot) {
		log.Warn().Err(primaryErr).Msg("primary snapshot unreadable, trying backup")
	}

	snap, backupErr := repo.ReadBackup()
	if backupErr == nil {
		if err := repo.WritePrimary(snap); err != nil {
			log.Error().Err(err).Msg("restoring primary snapshot from backup failed")
		}
		log.Info().
			Int("users", len(snap.Users)).
			Int("messages", len(snap.Messages)).
			Msg("state recovered from backup")
		return LoadResult{Snapshot: snap, Source: LoadedBackup}
	}
	if !errors.Is(backupErr, domain.ErrNoSnapshot) {
		log.Warn().Err(backupErr).Msg("backup snapshot unreadable")
	}

	fresh := domain.NewSnapshot()
	// Only create the primary file when none exists; an unreadable one is
	// left on disk for inspection until the first flush replaces it.
	if errors.Is(primaryErr, domain.ErrNoSnapshot) {
		if err := repo.WritePrimary(fresh); err != nil {
			log.Error().Err(err).Msg("initializing primary snapshot failed")
		}
	}
	return LoadResult{Snapshot: fresh, Source: LoadedFresh}
}
