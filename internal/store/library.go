package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/source"
)

// GetItem loads a library item by id. The kind is checked against the stored
// record so a stale link cannot resolve to the wrong entity.
func (s *Store) GetItem(ctx context.Context, kind source.ItemKind, itemID int64) (*completion.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, library_id, show_id, kind, title, season, episode
		FROM library_items WHERE id = ?`, itemID)

	var item completion.Item
	var showID, season, episode sql.NullInt64
	var itemKind string

	err := row.Scan(&item.ID, &item.LibraryID, &showID, &itemKind, &item.Title, &season, &episode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d not found", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	if itemKind != string(kind) {
		return nil, fmt.Errorf("item %d is %s, link says %s", itemID, itemKind, kind)
	}

	item.Kind = source.ItemKind(itemKind)
	item.ShowID = nullableInt64(showID)
	item.Season = int(season.Int64)
	item.Episode = int(episode.Int64)
	return &item, nil
}

// GetShow loads a show by id.
func (s *Store) GetShow(ctx context.Context, showID int64) (*completion.Show, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, library_id, title, path, organize_override
		FROM shows WHERE id = ?`, showID)

	var show completion.Show
	var override sql.NullInt64

	err := row.Scan(&show.ID, &show.LibraryID, &show.Title, &show.Path, &override)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("show %d not found", showID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load show %d: %w", showID, err)
	}

	if override.Valid {
		b := override.Int64 != 0
		show.OrganizeOverride = &b
	}
	return &show, nil
}

// GetLibrary loads a library by id.
func (s *Store) GetLibrary(ctx context.Context, libraryID int64) (*completion.Library, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, path, organize_enabled, rename_style
		FROM libraries WHERE id = ?`, libraryID)

	var lib completion.Library
	err := row.Scan(&lib.ID, &lib.Type, &lib.Path, &lib.OrganizeEnabled, &lib.RenameStyle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("library %d not found", libraryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load library %d: %w", libraryID, err)
	}
	return &lib, nil
}

// MediaFileExists reports whether a media-file record exists at the exact
// path.
func (s *Store) MediaFileExists(ctx context.Context, path string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM media_files WHERE path = ?`, path).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check media file at %q: %w", path, err)
	}
	return n > 0, nil
}

// CreateMediaFile records a media file.
func (s *Store) CreateMediaFile(ctx context.Context, libraryID, itemID *int64, path string, size int64) error {
	var lib, item interface{}
	if libraryID != nil {
		lib = *libraryID
	}
	if itemID != nil {
		item = *itemID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_files (library_id, item_id, path, size)
		VALUES (?, ?, ?, ?)`, lib, item, path, size)
	if err != nil {
		return fmt.Errorf("failed to create media file at %q: %w", path, err)
	}
	return nil
}

// UpdateMediaFilePath rewrites a media-file record's path after the organizer
// moved the file.
func (s *Store) UpdateMediaFilePath(ctx context.Context, oldPath, newPath string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE media_files SET path = ? WHERE path = ?`, newPath, oldPath)
	if err != nil {
		return fmt.Errorf("failed to update media file path: %w", err)
	}
	return nil
}

// UpdateItemStatus sets a library item's status.
func (s *Store) UpdateItemStatus(ctx context.Context, itemID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE library_items SET status = ? WHERE id = ?`, status, itemID)
	if err != nil {
		return fmt.Errorf("failed to update item %d status: %w", itemID, err)
	}
	return nil
}

// RefreshShowStats recomputes a show's aggregate file count and size from its
// items' media files.
func (s *Store) RefreshShowStats(ctx context.Context, showID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE shows SET
			file_count = (
				SELECT COUNT(1) FROM media_files mf
				JOIN library_items li ON li.id = mf.item_id
				WHERE li.show_id = ?
			),
			size_on_disk = (
				SELECT COALESCE(SUM(mf.size), 0) FROM media_files mf
				JOIN library_items li ON li.id = mf.item_id
				WHERE li.show_id = ?
			)
		WHERE id = ?`, showID, showID, showID)
	if err != nil {
		return fmt.Errorf("failed to refresh show %d stats: %w", showID, err)
	}
	return nil
}

// ListWantedItems returns monitored items still missing content, joined to
// their library for hunt context.
func (s *Store) ListWantedItems(ctx context.Context) ([]hunt.WantedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT li.id, l.user_id, li.library_id, l.type, li.kind, li.title,
		       li.season, li.episode, li.year
		FROM library_items li
		JOIN libraries l ON l.id = li.library_id
		WHERE li.monitored = 1 AND li.status = 'missing'
		ORDER BY li.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wanted items: %w", err)
	}
	defer rows.Close()

	var items []hunt.WantedItem
	for rows.Next() {
		item, err := scanWantedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetWantedItem loads one monitored, still-missing item, or nil when the item
// does not qualify.
func (s *Store) GetWantedItem(ctx context.Context, itemID int64) (*hunt.WantedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT li.id, l.user_id, li.library_id, l.type, li.kind, li.title,
		       li.season, li.episode, li.year
		FROM library_items li
		JOIN libraries l ON l.id = li.library_id
		WHERE li.id = ? AND li.monitored = 1 AND li.status = 'missing'`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wanted item %d: %w", itemID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanWantedItem(rows)
}

func scanWantedItem(rows *sql.Rows) (*hunt.WantedItem, error) {
	var item hunt.WantedItem
	var kind string
	var season, episode, year sql.NullInt64

	if err := rows.Scan(&item.ID, &item.UserID, &item.LibraryID, &item.LibraryType,
		&kind, &item.Title, &season, &episode, &year); err != nil {
		return nil, fmt.Errorf("failed to scan wanted item: %w", err)
	}

	item.Kind = source.ItemKind(kind)
	item.Season = int(season.Int64)
	item.Episode = int(episode.Int64)
	item.Year = int(year.Int64)
	return &item, nil
}
