package hunt

import (
	"time"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/source"
)

// SourceRef identifies one search backend inside a priority rule.
type SourceRef struct {
	Kind source.Kind `json:"kind"`
	ID   string      `json:"id"`
}

// PriorityRule is a user-configured source ordering. Scope is either a
// specific library, a library type, or neither (the user's default rule).
// Rules are created and edited elsewhere; this core only reads them.
type PriorityRule struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"userId"`
	LibraryID        *int64      `json:"libraryId,omitempty"`
	LibraryType      string      `json:"libraryType,omitempty"`
	SearchAllSources bool        `json:"searchAllSources"`
	Sources          []SourceRef `json:"sources"`
}

// Config is the request-scoped dispatcher configuration.
type Config struct {
	// SearchAllSources disables early stop even when the applied rule
	// allows it.
	SearchAllSources bool `json:"searchAllSources"`
	// MaxResultsPerSource caps the aggregate release list to
	// cap * sourcesSearched. The cap is applied once to the aggregate,
	// not per source. 0 disables it.
	MaxResultsPerSource int `json:"maxResultsPerSource"`
}

// SourceResult is the per-source detail of one hunt.
type SourceResult struct {
	Kind        source.Kind `json:"kind"`
	SourceID    string      `json:"sourceId"`
	IndexerName string      `json:"indexerName,omitempty"`
	Found       int         `json:"found"`
	Error       string      `json:"error,omitempty"`
}

// Result is the aggregated outcome of one hunt.
type Result struct {
	RequestID       string            `json:"requestId"`
	Releases        []indexer.Release `json:"releases"`
	SourcesSearched int               `json:"sourcesSearched"`
	StoppedEarly    bool              `json:"stoppedEarly"`
	Elapsed         time.Duration     `json:"-"`
	ElapsedMs       int64             `json:"elapsedMs"`
	AppliedRule     string            `json:"appliedRule"`
	Sources         []SourceResult    `json:"sources"`
}

// Outcome summarizes an auto-hunt or manual "hunt now" run for a human
// reader.
type Outcome struct {
	Searched   int `json:"searched"`
	Matched    int `json:"matched"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
