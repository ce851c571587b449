package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/indexer"
	"github.com/retriever-media/retriever/internal/source"
)

// GetRuleByLibrary returns the priority rule scoped to a specific library,
// or nil when none is configured.
func (s *Store) GetRuleByLibrary(ctx context.Context, userID, libraryID int64) (*hunt.PriorityRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, library_id, library_type, search_all_sources
		FROM priority_rules
		WHERE user_id = ? AND library_id = ?
		ORDER BY id LIMIT 1`, userID, libraryID)
	return s.scanRule(ctx, row)
}

// GetRuleByLibraryType returns the priority rule scoped to a library type,
// or nil when none is configured.
func (s *Store) GetRuleByLibraryType(ctx context.Context, userID int64, libraryType string) (*hunt.PriorityRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, library_id, library_type, search_all_sources
		FROM priority_rules
		WHERE user_id = ? AND library_id IS NULL AND library_type = ?
		ORDER BY id LIMIT 1`, userID, libraryType)
	return s.scanRule(ctx, row)
}

// GetUserDefaultRule returns the user's default priority rule, or nil when
// none is configured.
func (s *Store) GetUserDefaultRule(ctx context.Context, userID int64) (*hunt.PriorityRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, library_id, library_type, search_all_sources
		FROM priority_rules
		WHERE user_id = ? AND library_id IS NULL AND library_type IS NULL
		ORDER BY id LIMIT 1`, userID)
	return s.scanRule(ctx, row)
}

// ListEnabledIndexersByPriority lists the user's enabled indexers ordered by
// stored priority (lower number first).
func (s *Store) ListEnabledIndexersByPriority(ctx context.Context, userID int64) ([]indexer.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, priority, enabled
		FROM indexers
		WHERE user_id = ? AND enabled = 1
		ORDER BY priority, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled indexers: %w", err)
	}
	defer rows.Close()

	var defs []indexer.Definition
	for rows.Next() {
		var d indexer.Definition
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Priority, &d.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan indexer: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// ListIndexers lists every configured indexer across users.
func (s *Store) ListIndexers(ctx context.Context) ([]indexer.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, priority, enabled
		FROM indexers
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexers: %w", err)
	}
	defer rows.Close()

	var defs []indexer.Definition
	for rows.Next() {
		var d indexer.Definition
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Priority, &d.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan indexer: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// scanRule reads one rule row plus its ordered source refs.
func (s *Store) scanRule(ctx context.Context, row *sql.Row) (*hunt.PriorityRule, error) {
	var rule hunt.PriorityRule
	var libraryID sql.NullInt64
	var libraryType sql.NullString

	err := row.Scan(&rule.ID, &rule.UserID, &libraryID, &libraryType, &rule.SearchAllSources)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan priority rule: %w", err)
	}

	rule.LibraryID = nullableInt64(libraryID)
	if libraryType.Valid {
		rule.LibraryType = libraryType.String
	}

	refs, err := s.db.QueryContext(ctx, `
		SELECT source_kind, source_id
		FROM rule_sources
		WHERE rule_id = ?
		ORDER BY position`, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule sources: %w", err)
	}
	defer refs.Close()

	for refs.Next() {
		var kind, id string
		if err := refs.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("failed to scan rule source: %w", err)
		}
		rule.Sources = append(rule.Sources, hunt.SourceRef{
			Kind: source.Kind(kind),
			ID:   id,
		})
	}
	if err := refs.Err(); err != nil {
		return nil, err
	}

	return &rule, nil
}

// CreatePriorityRule inserts a rule with its ordered source refs. Rules are
// user-managed; this exists for seeding and tests.
func (s *Store) CreatePriorityRule(ctx context.Context, rule *hunt.PriorityRule) (int64, error) {
	var libraryID interface{}
	if rule.LibraryID != nil {
		libraryID = *rule.LibraryID
	}
	var libraryType interface{}
	if rule.LibraryType != "" {
		libraryType = rule.LibraryType
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO priority_rules (user_id, library_id, library_type, search_all_sources)
		VALUES (?, ?, ?, ?)`,
		rule.UserID, libraryID, libraryType, rule.SearchAllSources)
	if err != nil {
		return 0, fmt.Errorf("failed to insert priority rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for pos, ref := range rule.Sources {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO rule_sources (rule_id, position, source_kind, source_id)
			VALUES (?, ?, ?, ?)`,
			id, pos, string(ref.Kind), ref.ID); err != nil {
			return 0, fmt.Errorf("failed to insert rule source: %w", err)
		}
	}

	return id, nil
}

// CreateIndexer inserts an indexer definition. Indexer management is
// external; this exists for seeding and tests.
func (s *Store) CreateIndexer(ctx context.Context, def *indexer.Definition) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indexers (user_id, name, priority, enabled)
		VALUES (?, ?, ?, ?)`,
		def.UserID, def.Name, def.Priority, def.Enabled)
	if err != nil {
		return 0, fmt.Errorf("failed to insert indexer: %w", err)
	}
	return res.LastInsertId()
}
