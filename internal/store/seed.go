package store

import (
	"context"
	"fmt"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/source"
)

// Library/show/item management belongs to the library manager outside this
// core; these helpers exist for seeding and tests.

// CreateLibrary inserts a library and returns its id.
func (s *Store) CreateLibrary(ctx context.Context, userID int64, libType, name, path string, organize bool, renameStyle string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO libraries (user_id, type, name, path, organize_enabled, rename_style)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, libType, name, path, organize, renameStyle)
	if err != nil {
		return 0, fmt.Errorf("failed to insert library: %w", err)
	}
	return res.LastInsertId()
}

// CreateShow inserts a show and returns its id.
func (s *Store) CreateShow(ctx context.Context, show *completion.Show) (int64, error) {
	var override interface{}
	if show.OrganizeOverride != nil {
		override = *show.OrganizeOverride
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO shows (library_id, title, path, organize_override)
		VALUES (?, ?, ?, ?)`,
		show.LibraryID, show.Title, show.Path, override)
	if err != nil {
		return 0, fmt.Errorf("failed to insert show: %w", err)
	}
	return res.LastInsertId()
}

// CreateItemParams are the fields of a new library item.
type CreateItemParams struct {
	LibraryID int64
	ShowID    *int64
	Kind      source.ItemKind
	Title     string
	Season    int
	Episode   int
	Year      int
	Status    string
	Monitored bool
}

// CreateLibraryItem inserts a library item and returns its id.
func (s *Store) CreateLibraryItem(ctx context.Context, p CreateItemParams) (int64, error) {
	if p.Status == "" {
		p.Status = "missing"
	}
	var showID interface{}
	if p.ShowID != nil {
		showID = *p.ShowID
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO library_items (library_id, show_id, kind, title, season, episode, year, status, monitored)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LibraryID, showID, string(p.Kind), p.Title, p.Season, p.Episode, p.Year, p.Status, p.Monitored)
	if err != nil {
		return 0, fmt.Errorf("failed to insert library item: %w", err)
	}
	return res.LastInsertId()
}
