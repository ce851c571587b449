package hunt

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/source"
	"github.com/retriever-media/retriever/internal/torznab"
)

// WantedItem is a monitored library entity that still needs content.
type WantedItem struct {
	ID          int64
	UserID      int64
	LibraryID   int64
	LibraryType string
	Kind        source.ItemKind
	Title       string
	Season      int
	Episode     int
	Year        int
}

// WantedStore lists monitored items awaiting content.
type WantedStore interface {
	ListWantedItems(ctx context.Context) ([]WantedItem, error)
	GetWantedItem(ctx context.Context, itemID int64) (*WantedItem, error)
}

// Runner drives scheduled and manual hunts over wanted items.
type Runner struct {
	service *Service
	wanted  WantedStore
	grabber GrabFunc
	cfg     Config
	logger  zerolog.Logger
}

// GrabFunc hands the winning release for an item to the download engine.
type GrabFunc func(ctx context.Context, item WantedItem, releaseIndex int, result *Result) error

// NewRunner creates an auto-hunt runner.
func NewRunner(service *Service, wanted WantedStore, grabber GrabFunc, cfg Config, logger zerolog.Logger) *Runner {
	return &Runner{
		service: service,
		wanted:  wanted,
		grabber: grabber,
		cfg:     cfg,
		logger:  logger.With().Str("component", "autohunt").Logger(),
	}
}

// Run is the scheduled job body: it hunts every wanted item and grabs the
// best release found. Per-item failures are counted, logged and never abort
// the batch.
func (r *Runner) Run(ctx context.Context) error {
	items, err := r.wanted.ListWantedItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list wanted items: %w", err)
	}

	var outcome Outcome
	for _, item := range items {
		o := r.huntItem(ctx, item)
		outcome.Searched += o.Searched
		outcome.Matched += o.Matched
		outcome.Downloaded += o.Downloaded
		outcome.Skipped += o.Skipped
		outcome.Failed += o.Failed
	}

	r.logger.Info().
		Int("searched", outcome.Searched).
		Int("matched", outcome.Matched).
		Int("downloaded", outcome.Downloaded).
		Int("skipped", outcome.Skipped).
		Int("failed", outcome.Failed).
		Msg("Auto-hunt run completed")

	return nil
}

// RunItem hunts a single item on demand ("hunt now") and reports the
// outcome.
func (r *Runner) RunItem(ctx context.Context, itemID int64) (*Outcome, error) {
	item, err := r.wanted.GetWantedItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found or not wanted", itemID)
	}

	outcome := r.huntItem(ctx, *item)
	return &outcome, nil
}

// huntItem searches for one item and grabs the top release.
func (r *Runner) huntItem(ctx context.Context, item WantedItem) Outcome {
	var outcome Outcome
	outcome.Searched = 1

	q := queryForItem(item)
	libID := item.LibraryID

	result, err := r.service.Search(ctx, q, item.UserID, item.LibraryType, &libID, &r.cfg)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Int64("itemId", item.ID).
			Str("title", item.Title).
			Msg("Hunt failed for item")
		outcome.Failed = 1
		return outcome
	}

	if len(result.Releases) == 0 {
		r.logger.Debug().
			Int64("itemId", item.ID).
			Str("title", item.Title).
			Msg("No releases found for item")
		outcome.Skipped = 1
		return outcome
	}

	outcome.Matched = 1

	// Releases arrive in priority order; the first one wins.
	if err := r.grabber(ctx, item, 0, result); err != nil {
		r.logger.Warn().
			Err(err).
			Int64("itemId", item.ID).
			Str("release", result.Releases[0].Title).
			Msg("Failed to grab release")
		outcome.Failed = 1
		return outcome
	}

	r.logger.Info().
		Int64("itemId", item.ID).
		Str("title", item.Title).
		Str("release", result.Releases[0].Title).
		Msg("Grabbed release for item")
	outcome.Downloaded = 1
	return outcome
}

// queryForItem builds the typed query for a wanted item.
func queryForItem(item WantedItem) *torznab.Query {
	q := &torznab.Query{
		Term:         item.Title,
		CacheAllowed: true,
	}

	switch item.Kind {
	case source.ItemEpisode, source.ItemTvShow:
		q.Kind = torznab.KindTvSearch
		q.Season = item.Season
		q.Episode = item.Episode
		q.Categories = []int{torznab.CategoryTV}
	case source.ItemMovie:
		q.Kind = torznab.KindMovieSearch
		q.Year = item.Year
		q.Categories = []int{torznab.CategoryMovies}
	case source.ItemAlbum, source.ItemArtist, source.ItemTrack:
		q.Kind = torznab.KindMusicSearch
		q.Categories = []int{torznab.CategoryAudio}
	case source.ItemAudiobook:
		q.Kind = torznab.KindBookSearch
		q.Categories = []int{torznab.CategoryAudioAudiobook}
	default:
		q.Kind = torznab.KindSearch
	}

	q.Categories = torznab.ExpandCategories(q.Categories)
	return q
}
