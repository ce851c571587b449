package hunt

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/source"
)

// fakeRuleStore serves canned rules per scope.
type fakeRuleStore struct {
	libraryRules map[int64]*PriorityRule
	typeRules    map[string]*PriorityRule
	defaultRule  *PriorityRule
	indexers     []indexer.Definition
	err          error
}

func (f *fakeRuleStore) GetRuleByLibrary(_ context.Context, _ int64, libraryID int64) (*PriorityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.libraryRules[libraryID], nil
}

func (f *fakeRuleStore) GetRuleByLibraryType(_ context.Context, _ int64, libraryType string) (*PriorityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.typeRules[libraryType], nil
}

func (f *fakeRuleStore) GetUserDefaultRule(_ context.Context, _ int64) (*PriorityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.defaultRule, nil
}

func (f *fakeRuleStore) ListEnabledIndexersByPriority(_ context.Context, _ int64) ([]indexer.Definition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.indexers, nil
}

func torrentRefs(ids ...string) []SourceRef {
	refs := make([]SourceRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, SourceRef{Kind: source.KindTorrent, ID: id})
	}
	return refs
}

func TestResolve(t *testing.T) {
	logger := zerolog.Nop()
	libID := int64(42)

	t.Run("library rule wins over everything", func(t *testing.T) {
		rules := &fakeRuleStore{
			libraryRules: map[int64]*PriorityRule{
				42: {ID: 1, Sources: torrentRefs("7"), SearchAllSources: true},
			},
			typeRules: map[string]*PriorityRule{
				"tv": {ID: 2, Sources: torrentRefs("8")},
			},
			defaultRule: &PriorityRule{ID: 3, Sources: torrentRefs("9")},
		}
		r := NewResolver(rules, logger)

		order, searchAll, desc, err := r.Resolve(context.Background(), 1, "tv", &libID)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(order) != 1 || order[0].ID != "7" {
			t.Fatalf("order = %v, want library rule sources", order)
		}
		if !searchAll {
			t.Fatal("searchAll should come from the rule")
		}
		if desc != "library rule #1" {
			t.Fatalf("description = %q", desc)
		}
	})

	t.Run("library-type rule when no library rule", func(t *testing.T) {
		rules := &fakeRuleStore{
			typeRules: map[string]*PriorityRule{
				"tv": {ID: 2, Sources: torrentRefs("8", "9")},
			},
			defaultRule: &PriorityRule{ID: 3, Sources: torrentRefs("1")},
		}
		r := NewResolver(rules, logger)

		order, searchAll, desc, err := r.Resolve(context.Background(), 1, "tv", &libID)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(order) != 2 || order[0].ID != "8" {
			t.Fatalf("order = %v", order)
		}
		if searchAll {
			t.Fatal("searchAll should be false for this rule")
		}
		if desc != "library-type rule #2 (tv)" {
			t.Fatalf("description = %q", desc)
		}
	})

	t.Run("user default rule when no scoped rule", func(t *testing.T) {
		rules := &fakeRuleStore{
			defaultRule: &PriorityRule{ID: 3, Sources: torrentRefs("5")},
		}
		r := NewResolver(rules, logger)

		order, _, desc, err := r.Resolve(context.Background(), 1, "tv", &libID)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(order) != 1 || order[0].ID != "5" {
			t.Fatalf("order = %v", order)
		}
		if desc != "user default rule #3" {
			t.Fatalf("description = %q", desc)
		}
	})

	t.Run("synthesized default from enabled indexers", func(t *testing.T) {
		rules := &fakeRuleStore{
			indexers: []indexer.Definition{
				{ID: 11, Name: "alpha", Priority: 1, Enabled: true},
				{ID: 12, Name: "beta", Priority: 2, Enabled: true},
			},
		}
		r := NewResolver(rules, logger)

		order, searchAll, desc, err := r.Resolve(context.Background(), 1, "", nil)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if len(order) != 2 || order[0].ID != "11" || order[1].ID != "12" {
			t.Fatalf("order = %v", order)
		}
		if !searchAll {
			t.Fatal("synthesized default must set searchAll")
		}
		if desc != DefaultRuleDescription {
			t.Fatalf("description = %q", desc)
		}
		for _, ref := range order {
			if ref.Kind != source.KindTorrent {
				t.Fatalf("synthesized ref kind = %q", ref.Kind)
			}
		}
	})

	t.Run("nil library id skips library branch", func(t *testing.T) {
		rules := &fakeRuleStore{
			libraryRules: map[int64]*PriorityRule{
				42: {ID: 1, Sources: torrentRefs("7")},
			},
			defaultRule: &PriorityRule{ID: 3, Sources: torrentRefs("5")},
		}
		r := NewResolver(rules, logger)

		_, _, desc, err := r.Resolve(context.Background(), 1, "", nil)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if desc != "user default rule #3" {
			t.Fatalf("description = %q", desc)
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		rules := &fakeRuleStore{err: errors.New("db down")}
		r := NewResolver(rules, logger)

		if _, _, _, err := r.Resolve(context.Background(), 1, "tv", &libID); err == nil {
			t.Fatal("expected error")
		}
	})
}
