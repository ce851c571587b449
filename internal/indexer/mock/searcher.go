// Package mock provides an in-memory indexer search backend for developer
// mode and tests.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/torznab"
)

// Searcher simulates indexer searches over a canned release catalog.
type Searcher struct {
	mu       sync.RWMutex
	indexers map[int64]indexer.Definition
	catalog  []string
	loaded   map[int64]bool
}

// NewSearcher creates a mock searcher over the given indexer definitions.
func NewSearcher(defs []indexer.Definition) *Searcher {
	s := &Searcher{
		indexers: make(map[int64]indexer.Definition),
		catalog:  defaultCatalog(),
		loaded:   make(map[int64]bool),
	}
	for _, d := range defs {
		s.indexers[d.ID] = d
	}
	return s
}

// SetCatalog replaces the canned release titles.
func (s *Searcher) SetCatalog(titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = titles
}

// LoadUserIndexers marks the user's credentials as loaded. Always succeeds.
func (s *Searcher) LoadUserIndexers(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded[userID] = true
	return nil
}

// SearchIndexer returns catalog entries matching the query term, stamped with
// the indexer's identity.
func (s *Searcher) SearchIndexer(_ context.Context, indexerID int64, q *torznab.Query) ([]indexer.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexers[indexerID]
	if !ok {
		return nil, fmt.Errorf("indexer %d not configured", indexerID)
	}
	return s.matchCatalog(def, q), nil
}

// SearchAllIndexers queries every enabled indexer.
func (s *Searcher) SearchAllIndexers(_ context.Context, userID int64, q *torznab.Query) ([]indexer.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []indexer.Result
	for _, def := range s.indexers {
		if def.UserID != userID || !def.Enabled {
			continue
		}
		results = append(results, indexer.Result{
			IndexerID:   def.ID,
			IndexerName: def.Name,
			Releases:    s.matchCatalog(def, q),
		})
	}
	return results, nil
}

func (s *Searcher) matchCatalog(def indexer.Definition, q *torznab.Query) []indexer.Release {
	term := strings.ToLower(q.Term)

	var releases []indexer.Release
	for i, title := range s.catalog {
		if term != "" && !strings.Contains(strings.ToLower(title), term) {
			continue
		}
		releases = append(releases, indexer.Release{
			GUID:        fmt.Sprintf("mock-%d-%d", def.ID, i),
			Title:       title,
			DownloadURL: fmt.Sprintf("http://mock.indexer/%d/download/%d", def.ID, i),
			Size:        int64(1+i) << 30,
			PublishDate: time.Now().Add(-time.Duration(i*24) * time.Hour),
			Categories:  q.Categories,
			IndexerID:   def.ID,
			IndexerName: def.Name,
			Seeders:     100 - i*10,
			Leechers:    5 + i,
		})
	}
	return releases
}

func defaultCatalog() []string {
	return []string{
		"Night Harbor S01E01 1080p WEB-DL x264",
		"Night Harbor S01E02 1080p WEB-DL x264",
		"The Long Orbit 2024 2160p BluRay x265",
		"Paper Lanterns S03E07 720p HDTV",
		"Silent Meridian 2023 1080p WEB-DL",
	}
}
