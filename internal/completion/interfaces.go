package completion

import (
	"context"

	"github.com/retriever-media/retriever/internal/source"
)

// FileInfo is one file inside a completed download.
type FileInfo struct {
	Path string
	Size int64
}

// DownloadEngine enumerates the files of a completed download. The wire-level
// engine clients live outside this module.
type DownloadEngine interface {
	ListFiles(ctx context.Context, src source.DownloadSource) ([]FileInfo, error)
}

// Item is the library entity a download was grabbed for.
type Item struct {
	ID        int64
	LibraryID int64
	ShowID    *int64
	Kind      source.ItemKind
	Title     string
	Season    int
	Episode   int
}

// Show groups episodes and carries a per-show organize override.
type Show struct {
	ID               int64
	LibraryID        int64
	Title            string
	Path             string
	OrganizeOverride *bool // nil = inherit library setting
}

// Library is the destination a download reconciles into.
type Library struct {
	ID              int64
	Type            string
	Path            string
	OrganizeEnabled bool
	RenameStyle     string
}

// Store is the repository capability the processor reads and writes.
type Store interface {
	// ListSourcesPendingProcessing returns sources whose engine state is
	// seeding/completed and whose post-process status is null or
	// "pending". This predicate is the sole idempotency guard.
	ListSourcesPendingProcessing(ctx context.Context) ([]source.DownloadSource, error)
	MarkSourceProcessed(ctx context.Context, kind source.Kind, sourceID int64) error

	GetItem(ctx context.Context, kind source.ItemKind, itemID int64) (*Item, error)
	GetShow(ctx context.Context, showID int64) (*Show, error)
	GetLibrary(ctx context.Context, libraryID int64) (*Library, error)

	MediaFileExists(ctx context.Context, path string) (bool, error)
	CreateMediaFile(ctx context.Context, libraryID, itemID *int64, path string, size int64) error
	UpdateMediaFilePath(ctx context.Context, oldPath, newPath string) error

	UpdateItemStatus(ctx context.Context, itemID int64, status string) error
	RefreshShowStats(ctx context.Context, showID int64) error
}

// OrganizeRequest carries everything the organizer needs to place one file.
type OrganizeRequest struct {
	SourcePath  string
	LibraryPath string
	RenameStyle string
	Show        *Show
	Item        *Item
}

// Organizer moves/renames a media file per the active naming pattern.
type Organizer interface {
	OrganizeFile(ctx context.Context, req OrganizeRequest) (string, error)
}
