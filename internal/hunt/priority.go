package hunt

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/source"
)

// DefaultRuleDescription is the description reported when no user-configured
// rule matches and the resolver synthesizes an ordering from enabled indexers.
const DefaultRuleDescription = "default (all enabled sources by priority)"

// Resolver resolves the ordered list of sources to search for a given
// user/library context.
type Resolver struct {
	rules  RuleStore
	logger zerolog.Logger
}

// NewResolver creates a priority resolver.
func NewResolver(rules RuleStore, logger zerolog.Logger) *Resolver {
	return &Resolver{
		rules:  rules,
		logger: logger.With().Str("component", "priority").Logger(),
	}
}

// Resolve returns the source order, the rule's searchAll flag, and a
// description of which rule was applied. Precedence is strict: a
// library-specific rule wins over a library-type rule, which wins over the
// user's default rule; with no rule at all, every enabled indexer is searched
// in stored-priority order with searchAll=true. Exactly one branch applies
// per call. The description is for observability only.
func (r *Resolver) Resolve(ctx context.Context, userID int64, libraryType string, libraryID *int64) ([]SourceRef, bool, string, error) {
	if libraryID != nil {
		rule, err := r.rules.GetRuleByLibrary(ctx, userID, *libraryID)
		if err != nil {
			return nil, false, "", fmt.Errorf("failed to look up library rule: %w", err)
		}
		if rule != nil {
			return rule.Sources, rule.SearchAllSources, fmt.Sprintf("library rule #%d", rule.ID), nil
		}
	}

	if libraryType != "" {
		rule, err := r.rules.GetRuleByLibraryType(ctx, userID, libraryType)
		if err != nil {
			return nil, false, "", fmt.Errorf("failed to look up library-type rule: %w", err)
		}
		if rule != nil {
			return rule.Sources, rule.SearchAllSources, fmt.Sprintf("library-type rule #%d (%s)", rule.ID, libraryType), nil
		}
	}

	rule, err := r.rules.GetUserDefaultRule(ctx, userID)
	if err != nil {
		return nil, false, "", fmt.Errorf("failed to look up user default rule: %w", err)
	}
	if rule != nil {
		return rule.Sources, rule.SearchAllSources, fmt.Sprintf("user default rule #%d", rule.ID), nil
	}

	indexers, err := r.rules.ListEnabledIndexersByPriority(ctx, userID)
	if err != nil {
		return nil, false, "", fmt.Errorf("failed to list enabled indexers: %w", err)
	}

	refs := make([]SourceRef, 0, len(indexers))
	for _, idx := range indexers {
		refs = append(refs, SourceRef{
			Kind: source.KindTorrent,
			ID:   strconv.FormatInt(idx.ID, 10),
		})
	}

	r.logger.Debug().
		Int64("userId", userID).
		Int("sources", len(refs)).
		Msg("No priority rule configured, using enabled indexers by priority")

	return refs, true, DefaultRuleDescription, nil
}
