// Package indexer contains shared types for indexer search backends. The
// wire-level indexer clients live outside this module and are consumed
// through the hunt package's capability interfaces.
package indexer

import "time"

// Definition represents a configured indexer backend.
type Definition struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	Name     string `json:"name"`
	Priority int    `json:"priority"` // lower number = higher priority
	Enabled  bool   `json:"enabled"`
}

// Release is a single candidate download returned by an indexer.
type Release struct {
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	DownloadURL string    `json:"downloadUrl"`
	InfoURL     string    `json:"infoUrl,omitempty"`
	Size        int64     `json:"size"`
	PublishDate time.Time `json:"publishDate"`
	Categories  []int     `json:"categories,omitempty"`

	IndexerID   int64  `json:"indexerId"`
	IndexerName string `json:"indexer"`

	Seeders  int    `json:"seeders,omitempty"`
	Leechers int    `json:"leechers,omitempty"`
	InfoHash string `json:"infoHash,omitempty"`
}

// Result is the outcome of querying one indexer.
type Result struct {
	IndexerID   int64     `json:"indexerId"`
	IndexerName string    `json:"indexerName"`
	Releases    []Release `json:"releases,omitempty"`
	Err         error     `json:"-"`
}
