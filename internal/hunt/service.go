// Package hunt implements the priority-ordered multi-source search
// dispatcher.
package hunt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/source"
	"github.com/retriever-media/retriever/internal/torznab"
)

// Event types broadcast by the dispatcher.
const (
	EventHuntStarted   = "hunt:started"
	EventHuntCompleted = "hunt:completed"
)

// HuntStartedPayload is the payload for hunt:started events.
type HuntStartedPayload struct {
	RequestID string `json:"requestId"`
	Term      string `json:"term,omitempty"`
	Kind      string `json:"kind"`
	Sources   int    `json:"sources"`
}

// HuntCompletedPayload is the payload for hunt:completed events.
type HuntCompletedPayload struct {
	RequestID       string `json:"requestId"`
	Releases        int    `json:"releases"`
	SourcesSearched int    `json:"sourcesSearched"`
	StoppedEarly    bool   `json:"stoppedEarly"`
	ElapsedMs       int64  `json:"elapsedMs"`
}

// Service dispatches searches across prioritized sources.
type Service struct {
	indexers    IndexerSearcher
	resolver    *Resolver
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a new hunt dispatcher.
func NewService(indexers IndexerSearcher, resolver *Resolver, logger zerolog.Logger) *Service {
	return &Service{
		indexers: indexers,
		resolver: resolver,
		logger:   logger.With().Str("component", "hunt").Logger(),
	}
}

// SetBroadcaster sets the event broadcaster.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Search runs a priority-ordered hunt. Sources are queried sequentially in
// rule order; with searchAll disabled the iteration stops at the first source
// that returns any release. A single source's failure is recorded in its
// result entry and never aborts the hunt; the only fatal path is the
// credential load.
func (s *Service) Search(ctx context.Context, q *torznab.Query, userID int64, libraryType string, libraryID *int64, cfg *Config) (*Result, error) {
	startTime := time.Now()

	if err := s.indexers.LoadUserIndexers(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load user indexers: %w", err)
	}

	order, ruleSearchAll, description, err := s.resolver.Resolve(ctx, userID, libraryType, libraryID)
	if err != nil {
		return nil, err
	}

	searchAll := ruleSearchAll
	if cfg != nil && cfg.SearchAllSources {
		searchAll = true
	}

	result := &Result{
		RequestID:   uuid.NewString(),
		Releases:    []indexer.Release{},
		AppliedRule: description,
		Sources:     make([]SourceResult, 0, len(order)),
	}

	s.broadcastStarted(result.RequestID, q, len(order))

	s.logger.Info().
		Str("requestId", result.RequestID).
		Str("term", q.Term).
		Str("kind", string(q.Kind)).
		Str("rule", description).
		Int("sources", len(order)).
		Bool("searchAll", searchAll).
		Msg("Starting hunt")

	for _, ref := range order {
		result.SourcesSearched++

		switch ref.Kind {
		case source.KindTorrent:
			s.searchTorrentRef(ctx, ref, q, result)
		case source.KindUsenet:
			// Extension point: no Usenet search backend is wired yet.
			s.logger.Debug().
				Str("sourceId", ref.ID).
				Msg("Skipping usenet source, no backend wired")
		default:
			s.logger.Debug().
				Str("kind", string(ref.Kind)).
				Str("sourceId", ref.ID).
				Msg("Skipping source of inert kind")
		}

		if !searchAll && len(result.Releases) > 0 {
			result.StoppedEarly = true
			break
		}
	}

	// The cap bounds the combined list, not each source individually; one
	// prolific source can crowd out another's results.
	if cfg != nil && cfg.MaxResultsPerSource > 0 {
		limit := cfg.MaxResultsPerSource * result.SourcesSearched
		if len(result.Releases) > limit {
			result.Releases = result.Releases[:limit]
		}
	}

	result.Elapsed = time.Since(startTime)
	result.ElapsedMs = result.Elapsed.Milliseconds()

	s.broadcastCompleted(result)

	s.logger.Info().
		Str("requestId", result.RequestID).
		Int("releases", len(result.Releases)).
		Int("sourcesSearched", result.SourcesSearched).
		Bool("stoppedEarly", result.StoppedEarly).
		Dur("elapsed", result.Elapsed).
		Msg("Hunt completed")

	return result, nil
}

// searchTorrentRef queries one torrent indexer ref and records its outcome.
// An unparsable ref id is logged and skipped; a search error is captured in
// the per-source detail.
func (s *Service) searchTorrentRef(ctx context.Context, ref SourceRef, q *torznab.Query, result *Result) {
	indexerID, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil {
		s.logger.Warn().
			Str("sourceId", ref.ID).
			Msg("Skipping source with unparsable indexer id")
		result.Sources = append(result.Sources, SourceResult{
			Kind:     ref.Kind,
			SourceID: ref.ID,
			Error:    fmt.Sprintf("invalid indexer id %q", ref.ID),
		})
		return
	}

	start := time.Now()
	releases, err := s.indexers.SearchIndexer(ctx, indexerID, q)
	elapsed := time.Since(start)

	detail := SourceResult{
		Kind:     ref.Kind,
		SourceID: ref.ID,
		Found:    len(releases),
	}
	if err != nil {
		detail.Error = err.Error()
		s.logger.Warn().
			Err(err).
			Int64("indexerId", indexerID).
			Dur("elapsed", elapsed).
			Msg("Indexer search failed")
	} else {
		if len(releases) > 0 {
			detail.IndexerName = releases[0].IndexerName
		}
		result.Releases = append(result.Releases, releases...)
		s.logger.Debug().
			Int64("indexerId", indexerID).
			Int("results", len(releases)).
			Dur("elapsed", elapsed).
			Msg("Indexer search completed")
	}

	result.Sources = append(result.Sources, detail)
}

// SearchAll queries every enabled indexer for the user with no priority or
// early-stop logic. Retained for compatibility callers that do not need
// prioritization.
func (s *Service) SearchAll(ctx context.Context, q *torznab.Query, userID int64) (*Result, error) {
	startTime := time.Now()

	if err := s.indexers.LoadUserIndexers(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load user indexers: %w", err)
	}

	perIndexer, err := s.indexers.SearchAllIndexers(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search indexers: %w", err)
	}

	result := &Result{
		RequestID:   uuid.NewString(),
		Releases:    []indexer.Release{},
		AppliedRule: "all enabled indexers",
		Sources:     make([]SourceResult, 0, len(perIndexer)),
	}

	for _, r := range perIndexer {
		result.SourcesSearched++
		detail := SourceResult{
			Kind:        source.KindTorrent,
			SourceID:    strconv.FormatInt(r.IndexerID, 10),
			IndexerName: r.IndexerName,
			Found:       len(r.Releases),
		}
		if r.Err != nil {
			detail.Error = r.Err.Error()
		} else {
			result.Releases = append(result.Releases, r.Releases...)
		}
		result.Sources = append(result.Sources, detail)
	}

	result.Elapsed = time.Since(startTime)
	result.ElapsedMs = result.Elapsed.Milliseconds()

	s.logger.Info().
		Str("requestId", result.RequestID).
		Int("releases", len(result.Releases)).
		Int("sourcesSearched", result.SourcesSearched).
		Dur("elapsed", result.Elapsed).
		Msg("Search-all completed")

	return result, nil
}

func (s *Service) broadcastStarted(requestID string, q *torznab.Query, sources int) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventHuntStarted, HuntStartedPayload{
		RequestID: requestID,
		Term:      q.Term,
		Kind:      string(q.Kind),
		Sources:   sources,
	})
}

func (s *Service) broadcastCompleted(result *Result) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(EventHuntCompleted, HuntCompletedPayload{
		RequestID:       result.RequestID,
		Releases:        len(result.Releases),
		SourcesSearched: result.SourcesSearched,
		StoppedEarly:    result.StoppedEarly,
		ElapsedMs:       result.ElapsedMs,
	})
}
