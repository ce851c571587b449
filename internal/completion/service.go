// Package completion reconciles finished downloads into library state.
package completion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/source"
)

// videoExtensions is the allow-list applied to files inside a completed
// download.
var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".ts":   true,
	".m2ts": true,
	".webm": true,
	".flv":  true,
	".ogm":  true,
	".divx": true,
	".vob":  true,
}

// IsVideoFile reports whether a path carries a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// ItemStatusDownloaded is the status written to a linked item once its files
// are reconciled.
const ItemStatusDownloaded = "downloaded"

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Event types broadcast by the processor.
const EventSourceProcessed = "completion:processed"

// SourceProcessedPayload is the payload for completion:processed events.
type SourceProcessedPayload struct {
	SourceID   int64  `json:"sourceId"`
	SourceKind string `json:"sourceKind"`
	Files      int    `json:"files"`
}

// Service is the download-completion post-processor.
type Service struct {
	store       Store
	engine      DownloadEngine
	organizer   Organizer
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a completion processor.
func NewService(store Store, engine DownloadEngine, organizer Organizer, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		engine:    engine,
		organizer: organizer,
		logger:    logger.With().Str("component", "completion").Logger(),
	}
}

// SetBroadcaster sets the event broadcaster.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ProcessCompletedDownloads reconciles every source pending post-processing.
// Each source is handled independently: a failure on one is logged and never
// aborts the batch. Every handled source is marked processed exactly once,
// whether or not all of its files succeeded; sources whose files cannot even
// be listed are marked processed too, so no source can wedge the monitor.
func (s *Service) ProcessCompletedDownloads(ctx context.Context) error {
	sources, err := s.store.ListSourcesPendingProcessing(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending sources: %w", err)
	}

	if len(sources) == 0 {
		return nil
	}

	s.logger.Info().Int("sources", len(sources)).Msg("Processing completed downloads")

	for _, src := range sources {
		s.processSource(ctx, src)
	}

	return nil
}

// processSource handles one completed source end to end.
func (s *Service) processSource(ctx context.Context, src source.DownloadSource) {
	log := s.logger.With().
		Int64("sourceId", src.ID()).
		Str("sourceKind", string(src.SourceKind())).
		Str("name", src.Name()).
		Logger()

	files, err := s.engine.ListFiles(ctx, src)
	if err != nil {
		// Never retry a source whose files cannot even be listed.
		log.Warn().Err(err).Msg("Failed to list files, marking source processed anyway")
		s.markProcessed(ctx, src, 0)
		return
	}

	item, show, library := s.resolveTarget(ctx, src, log)
	organize := s.organizeEnabled(show, library)

	imported := 0
	for _, f := range files {
		if !IsVideoFile(f.Path) {
			continue
		}
		if s.importFile(ctx, src, f, item, show, library, organize, log) {
			imported++
		}
	}

	if item != nil {
		if err := s.store.UpdateItemStatus(ctx, item.ID, ItemStatusDownloaded); err != nil {
			log.Warn().Err(err).Int64("itemId", item.ID).Msg("Failed to update item status")
		}
		if show != nil {
			if err := s.store.RefreshShowStats(ctx, show.ID); err != nil {
				log.Warn().Err(err).Int64("showId", show.ID).Msg("Failed to refresh show stats")
			}
		}
	}

	s.markProcessed(ctx, src, imported)

	log.Info().
		Int("files", len(files)).
		Int("imported", imported).
		Msg("Processed completed download")
}

// importFile records one video file, organizing it when enabled. Returns true
// when a media-file record was created.
func (s *Service) importFile(ctx context.Context, src source.DownloadSource, f FileInfo, item *Item, show *Show, library *Library, organize bool, log zerolog.Logger) bool {
	exists, err := s.store.MediaFileExists(ctx, f.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", f.Path).Msg("Failed to check for existing media file")
		return false
	}
	if exists {
		// Already recorded by an earlier pass.
		return false
	}

	var libID, itemID *int64
	if library != nil {
		libID = &library.ID
	} else if src.LibraryID() != nil {
		libID = src.LibraryID()
	}
	if item != nil {
		itemID = &item.ID
	}

	if err := s.store.CreateMediaFile(ctx, libID, itemID, f.Path, f.Size); err != nil {
		log.Warn().Err(err).Str("path", f.Path).Msg("Failed to create media file record")
		return false
	}

	if organize && library != nil {
		newPath, err := s.organizer.OrganizeFile(ctx, OrganizeRequest{
			SourcePath:  f.Path,
			LibraryPath: library.Path,
			RenameStyle: library.RenameStyle,
			Show:        show,
			Item:        item,
		})
		if err != nil {
			// Organize failure never fails the file's record nor the batch.
			log.Warn().Err(err).Str("path", f.Path).Msg("Failed to organize file")
		} else if newPath != "" && newPath != f.Path {
			if err := s.store.UpdateMediaFilePath(ctx, f.Path, newPath); err != nil {
				log.Warn().Err(err).Str("path", newPath).Msg("Failed to record organized path")
			}
		}
	}

	return true
}

// resolveTarget resolves a source's linked item to its owning show and
// library.
func (s *Service) resolveTarget(ctx context.Context, src source.DownloadSource, log zerolog.Logger) (*Item, *Show, *Library) {
	var item *Item
	var show *Show
	var library *Library

	if linked := src.Linked(); linked != nil {
		var err error
		item, err = s.store.GetItem(ctx, linked.Kind, linked.ID)
		if err != nil {
			log.Warn().Err(err).Int64("linkedId", linked.ID).Msg("Failed to resolve linked item")
		}
	}

	if item != nil && item.ShowID != nil {
		var err error
		show, err = s.store.GetShow(ctx, *item.ShowID)
		if err != nil {
			log.Warn().Err(err).Int64("showId", *item.ShowID).Msg("Failed to resolve show")
		}
	}

	libraryID := src.LibraryID()
	if item != nil {
		libraryID = &item.LibraryID
	}
	if libraryID != nil {
		var err error
		library, err = s.store.GetLibrary(ctx, *libraryID)
		if err != nil {
			log.Warn().Err(err).Int64("libraryId", *libraryID).Msg("Failed to resolve library")
		}
	}

	return item, show, library
}

// organizeEnabled resolves the effective organize setting: a show-level
// override takes precedence over the library default.
func (s *Service) organizeEnabled(show *Show, library *Library) bool {
	if show != nil && show.OrganizeOverride != nil {
		return *show.OrganizeOverride
	}
	return library != nil && library.OrganizeEnabled
}

func (s *Service) markProcessed(ctx context.Context, src source.DownloadSource, files int) {
	if err := s.store.MarkSourceProcessed(ctx, src.SourceKind(), src.ID()); err != nil {
		s.logger.Error().
			Err(err).
			Int64("sourceId", src.ID()).
			Msg("Failed to mark source processed")
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(EventSourceProcessed, SourceProcessedPayload{
			SourceID:   src.ID(),
			SourceKind: string(src.SourceKind()),
			Files:      files,
		})
	}
}
