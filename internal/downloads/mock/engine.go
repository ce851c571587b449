// Package mock provides an in-memory download engine for developer mode.
package mock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/downloads"
	"github.com/retriever-media/retriever/internal/source"
)

const (
	// downloadDuration is how long a mock download takes to complete.
	downloadDuration = 30 * time.Second

	// downloadDir is the simulated download directory.
	downloadDir = "/mock/downloads"
)

// download is one simulated engine entry.
type download struct {
	id      string
	name    string
	addedAt time.Time
}

// Engine simulates a download client. Downloads complete after a fixed
// duration and expose a single video file named after the download.
type Engine struct {
	mu            sync.RWMutex
	downloads     map[string]*download
	completeAfter time.Duration
}

var _ downloads.Engine = (*Engine)(nil)

// NewEngine creates an empty mock engine.
func NewEngine() *Engine {
	return &Engine{
		downloads:     make(map[string]*download),
		completeAfter: downloadDuration,
	}
}

// SetCompleteAfter overrides how long simulated downloads take.
func (e *Engine) SetCompleteAfter(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completeAfter = d
}

// Add registers a simulated download.
func (e *Engine) Add(_ context.Context, req downloads.AddRequest) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := generateID()
	e.downloads[id] = &download{
		id:      id,
		name:    req.Name,
		addedAt: time.Now(),
	}
	return id, nil
}

// ListFiles returns the simulated content of a completed download.
func (e *Engine) ListFiles(_ context.Context, src source.DownloadSource) ([]completion.FileInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	name := src.Name()
	dir := src.DownloadPath()
	if dir == "" {
		dir = downloadDir
	}

	return []completion.FileInfo{
		{
			Path: filepath.Join(dir, name, name+".mkv"),
			Size: 1 << 30,
		},
		{
			Path: filepath.Join(dir, name, name+".nfo"),
			Size: 4 << 10,
		},
	}, nil
}

// State reports the simulated state of a download by its engine id.
func (e *Engine) State(_ context.Context, src source.DownloadSource) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var engineID string
	switch d := src.(type) {
	case *source.TorrentDownload:
		engineID = d.EngineID
	case *source.UsenetDownload:
		engineID = d.NzbID
	}

	d, ok := e.downloads[engineID]
	if !ok {
		return "", fmt.Errorf("unknown download %q", engineID)
	}
	if time.Since(d.addedAt) >= e.completeAfter {
		return "seeding", nil
	}
	return "downloading", nil
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
