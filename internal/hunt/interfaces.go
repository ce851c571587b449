package hunt

import (
	"context"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/torznab"
)

// IndexerSearcher is the external indexer search capability. Implementations
// own HTTP negotiation, credentials and rate limiting.
type IndexerSearcher interface {
	// LoadUserIndexers ensures the user's indexer credentials are loaded.
	// Failure aborts the whole hunt.
	LoadUserIndexers(ctx context.Context, userID int64) error
	// SearchIndexer queries exactly one indexer.
	SearchIndexer(ctx context.Context, indexerID int64, q *torznab.Query) ([]indexer.Release, error)
	// SearchAllIndexers queries every enabled indexer for the user.
	SearchAllIndexers(ctx context.Context, userID int64, q *torznab.Query) ([]indexer.Result, error)
}

// RuleStore provides read access to priority rules and indexer listings.
type RuleStore interface {
	// Each lookup returns (nil, nil) when no rule matches the scope.
	GetRuleByLibrary(ctx context.Context, userID, libraryID int64) (*PriorityRule, error)
	GetRuleByLibraryType(ctx context.Context, userID int64, libraryType string) (*PriorityRule, error)
	GetUserDefaultRule(ctx context.Context, userID int64) (*PriorityRule, error)
	ListEnabledIndexersByPriority(ctx context.Context, userID int64) ([]indexer.Definition, error)
}

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}
