package hunt

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/source"
)

// fakeWantedStore serves canned wanted items.
type fakeWantedStore struct {
	items []WantedItem
	err   error
}

func (f *fakeWantedStore) ListWantedItems(_ context.Context) ([]WantedItem, error) {
	return f.items, f.err
}

func (f *fakeWantedStore) GetWantedItem(_ context.Context, itemID int64) (*WantedItem, error) {
	for _, item := range f.items {
		if item.ID == itemID {
			return &item, nil
		}
	}
	return nil, nil
}

func newTestRunner(searcher *fakeSearcher, wanted *fakeWantedStore, grab GrabFunc) *Runner {
	svc := newTestService(searcher, &fakeRuleStore{
		defaultRule: &PriorityRule{ID: 1, Sources: torrentRefs("1")},
	})
	return NewRunner(svc, wanted, grab, Config{}, zerolog.Nop())
}

func TestRunnerRun(t *testing.T) {
	t.Run("grabs first release per matched item", func(t *testing.T) {
		searcher := &fakeSearcher{
			releases: map[int64][]indexer.Release{
				1: releasesNamed(1, "best", "second"),
			},
		}
		wanted := &fakeWantedStore{items: []WantedItem{
			{ID: 10, UserID: 1, LibraryID: 5, LibraryType: "tv", Kind: source.ItemEpisode, Title: "Night Harbor", Season: 1, Episode: 2},
		}}

		var grabbed []string
		runner := newTestRunner(searcher, wanted, func(_ context.Context, item WantedItem, idx int, result *Result) error {
			grabbed = append(grabbed, result.Releases[idx].Title)
			return nil
		})

		if err := runner.Run(context.Background()); err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if len(grabbed) != 1 || grabbed[0] != "best" {
			t.Fatalf("grabbed = %v, want [best]", grabbed)
		}
	})

	t.Run("grab failure does not abort the batch", func(t *testing.T) {
		searcher := &fakeSearcher{
			releases: map[int64][]indexer.Release{
				1: releasesNamed(1, "hit"),
			},
		}
		wanted := &fakeWantedStore{items: []WantedItem{
			{ID: 10, UserID: 1, Kind: source.ItemMovie, Title: "One"},
			{ID: 11, UserID: 1, Kind: source.ItemMovie, Title: "Two"},
		}}

		calls := 0
		runner := newTestRunner(searcher, wanted, func(context.Context, WantedItem, int, *Result) error {
			calls++
			return errors.New("engine refused")
		})

		if err := runner.Run(context.Background()); err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if calls != 2 {
			t.Fatalf("grab calls = %d, want 2", calls)
		}
	})

	t.Run("list failure is the only fatal path", func(t *testing.T) {
		runner := newTestRunner(&fakeSearcher{}, &fakeWantedStore{err: errors.New("db down")}, nil)
		if err := runner.Run(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestRunnerRunItem(t *testing.T) {
	searcher := &fakeSearcher{
		releases: map[int64][]indexer.Release{
			1: releasesNamed(1, "hit"),
		},
	}
	wanted := &fakeWantedStore{items: []WantedItem{
		{ID: 10, UserID: 1, Kind: source.ItemEpisode, Title: "Night Harbor", Season: 1, Episode: 1},
	}}

	runner := newTestRunner(searcher, wanted, func(context.Context, WantedItem, int, *Result) error {
		return nil
	})

	outcome, err := runner.RunItem(context.Background(), 10)
	if err != nil {
		t.Fatalf("RunItem error: %v", err)
	}
	if outcome.Searched != 1 || outcome.Matched != 1 || outcome.Downloaded != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}

	if _, err := runner.RunItem(context.Background(), 99); err == nil {
		t.Fatal("unknown item must error")
	}
}

func TestRunnerSkipsWhenNoReleases(t *testing.T) {
	searcher := &fakeSearcher{releases: map[int64][]indexer.Release{}}
	wanted := &fakeWantedStore{items: []WantedItem{
		{ID: 10, UserID: 1, Kind: source.ItemMovie, Title: "Ghost"},
	}}

	grabCalled := false
	runner := newTestRunner(searcher, wanted, func(context.Context, WantedItem, int, *Result) error {
		grabCalled = true
		return nil
	})

	outcome, err := runner.RunItem(context.Background(), 10)
	if err != nil {
		t.Fatalf("RunItem error: %v", err)
	}
	if outcome.Skipped != 1 || outcome.Downloaded != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if grabCalled {
		t.Fatal("grab must not run with no releases")
	}
}

func TestQueryForItem(t *testing.T) {
	t.Run("episode builds expanded tv query", func(t *testing.T) {
		q := queryForItem(WantedItem{Kind: source.ItemEpisode, Title: "Night Harbor", Season: 2, Episode: 3})
		if q.Kind != "tvsearch" || q.Season != 2 || q.Episode != 3 {
			t.Fatalf("query = %+v", q)
		}
		hasParent, hasChild := false, false
		for _, c := range q.Categories {
			if c == 5000 {
				hasParent = true
			}
			if c == 5040 {
				hasChild = true
			}
		}
		if !hasParent || !hasChild {
			t.Fatalf("categories not expanded: %v", q.Categories)
		}
	})

	t.Run("movie carries year", func(t *testing.T) {
		q := queryForItem(WantedItem{Kind: source.ItemMovie, Title: "The Long Orbit", Year: 2024})
		if q.Kind != "movie" || q.Year != 2024 {
			t.Fatalf("query = %+v", q)
		}
	})

	t.Run("audiobook uses audiobook category", func(t *testing.T) {
		q := queryForItem(WantedItem{Kind: source.ItemAudiobook, Title: "Paper Lanterns"})
		if q.Kind != "book" {
			t.Fatalf("kind = %q", q.Kind)
		}
		if len(q.Categories) != 1 || q.Categories[0] != 3030 {
			t.Fatalf("categories = %v", q.Categories)
		}
	})
}
