// Package downloads bridges accepted releases into a download engine and
// tracks their records.
package downloads

import (
	"context"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/source"
)

// AddRequest carries everything the engine needs to start one download.
type AddRequest struct {
	Name        string
	DownloadURL string
	InfoHash    string
	Category    string
}

// Engine is the download backend capability. Implementations own the wire
// protocol of their client.
type Engine interface {
	// Add starts a download and returns the engine-side id.
	Add(ctx context.Context, req AddRequest) (string, error)
	// ListFiles enumerates the files of a completed download.
	ListFiles(ctx context.Context, src source.DownloadSource) ([]completion.FileInfo, error)
	// State reports the engine-side state of a download, e.g. "downloading",
	// "seeding", "completed".
	State(ctx context.Context, src source.DownloadSource) (string, error)
}
