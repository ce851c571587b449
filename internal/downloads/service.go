package downloads

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/source"
)

// Store persists download records.
type Store interface {
	CreateTorrentDownload(ctx context.Context, t *source.TorrentDownload) (int64, error)
	ListSourcesInFlight(ctx context.Context) ([]source.DownloadSource, error)
	SetDownloadState(ctx context.Context, kind source.Kind, sourceID int64, state string) error
}

// Service hands releases to the engine and records the resulting downloads.
type Service struct {
	engine Engine
	store  Store
	logger zerolog.Logger
}

// NewService creates a new downloads service.
func NewService(engine Engine, store Store, logger zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "downloads").Logger(),
	}
}

// Grab sends the chosen release of a hunt result to the engine and records
// the download linked back to its item. It satisfies the auto-hunt runner's
// grab hook.
func (s *Service) Grab(ctx context.Context, item hunt.WantedItem, releaseIndex int, result *hunt.Result) error {
	if releaseIndex < 0 || releaseIndex >= len(result.Releases) {
		return fmt.Errorf("release index %d out of range", releaseIndex)
	}
	release := result.Releases[releaseIndex]

	engineID, err := s.engine.Add(ctx, AddRequest{
		Name:        release.Title,
		DownloadURL: release.DownloadURL,
		InfoHash:    release.InfoHash,
		Category:    item.LibraryType,
	})
	if err != nil {
		return fmt.Errorf("failed to add download to engine: %w", err)
	}

	libID := item.LibraryID
	indexerID := release.IndexerID
	record := &source.TorrentDownload{
		Title:    release.Title,
		UserID:   item.UserID,
		Library:  &libID,
		Indexer:  &indexerID,
		EngineID: engineID,
		State:    "downloading",
		Item: &source.LinkedItem{
			Kind: item.Kind,
			ID:   item.ID,
		},
	}

	recordID, err := s.store.CreateTorrentDownload(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	s.logger.Info().
		Int64("downloadId", recordID).
		Int64("itemId", item.ID).
		Str("release", release.Title).
		Str("engineId", engineID).
		Msg("Download added")
	return nil
}

// SyncInFlight refreshes engine state for every stored download that has not
// finished, so the completion monitor sees seeding/completed transitions.
func (s *Service) SyncInFlight(ctx context.Context) error {
	active, err := s.store.ListSourcesInFlight(ctx)
	if err != nil {
		return fmt.Errorf("failed to list in-flight downloads: %w", err)
	}
	return s.SyncStates(ctx, active)
}

// SyncStates refreshes stored download states from the engine. Downloads the
// engine no longer knows about are left untouched.
func (s *Service) SyncStates(ctx context.Context, sources []source.DownloadSource) error {
	for _, src := range sources {
		state, err := s.engine.State(ctx, src)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("downloadId", src.ID()).
				Msg("Failed to query engine state")
			continue
		}
		if err := s.store.SetDownloadState(ctx, src.SourceKind(), src.ID(), state); err != nil {
			return err
		}
	}
	return nil
}
