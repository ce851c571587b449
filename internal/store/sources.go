package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/retriever-media/retriever/internal/source"
)

// completedStates are the engine states of a finished download.
var completedStates = []interface{}{"seeding", "completed"}

// ListSourcesPendingProcessing returns torrent and usenet downloads whose
// engine state is seeding/completed and whose post-process status is null or
// "pending". Torrent sources are returned first, each table in id order.
func (s *Store) ListSourcesPendingProcessing(ctx context.Context) ([]source.DownloadSource, error) {
	return s.listSources(ctx, "state IN (?, ?)")
}

// ListSourcesInFlight returns downloads the engine has not finished yet:
// state outside seeding/completed with post-process status still null or
// "pending". The completion monitor refreshes these from the engine before
// each pass.
func (s *Store) ListSourcesInFlight(ctx context.Context) ([]source.DownloadSource, error) {
	return s.listSources(ctx, "state NOT IN (?, ?)")
}

func (s *Store) listSources(ctx context.Context, stateCond string) ([]source.DownloadSource, error) {
	var out []source.DownloadSource

	torrents, err := s.listTorrents(ctx, stateCond)
	if err != nil {
		return nil, err
	}
	for _, t := range torrents {
		out = append(out, t)
	}

	usenet, err := s.listUsenet(ctx, stateCond)
	if err != nil {
		return nil, err
	}
	for _, u := range usenet {
		out = append(out, u)
	}

	return out, nil
}

func (s *Store) listTorrents(ctx context.Context, stateCond string) ([]*source.TorrentDownload, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, library_id, indexer_id, name, download_path,
		       engine_id, state, linked_kind, linked_id, post_process_status
		FROM torrent_downloads
		WHERE %s
		  AND (post_process_status IS NULL OR post_process_status = ?)
		ORDER BY id`, stateCond),
		append(completedStates, source.StatusPending)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list torrent downloads: %w", err)
	}
	defer rows.Close()

	var out []*source.TorrentDownload
	for rows.Next() {
		var t source.TorrentDownload
		var library, indexerID, linkedID sql.NullInt64
		var linkedKind, postStatus sql.NullString

		if err := rows.Scan(&t.RecordID, &t.UserID, &library, &indexerID, &t.Title,
			&t.Path, &t.EngineID, &t.State, &linkedKind, &linkedID, &postStatus); err != nil {
			return nil, fmt.Errorf("failed to scan torrent download: %w", err)
		}

		t.Library = nullableInt64(library)
		t.Indexer = nullableInt64(indexerID)
		t.PostStatus = nullableString(postStatus)
		if linkedKind.Valid && linkedID.Valid {
			t.Item = &source.LinkedItem{
				Kind: source.ItemKind(linkedKind.String),
				ID:   linkedID.Int64,
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) listUsenet(ctx context.Context, stateCond string) ([]*source.UsenetDownload, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, library_id, indexer_id, name, download_path,
		       nzb_id, state, linked_kind, linked_id, post_process_status
		FROM usenet_downloads
		WHERE %s
		  AND (post_process_status IS NULL OR post_process_status = ?)
		ORDER BY id`, stateCond),
		append(completedStates, source.StatusPending)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list usenet downloads: %w", err)
	}
	defer rows.Close()

	var out []*source.UsenetDownload
	for rows.Next() {
		var u source.UsenetDownload
		var library, indexerID, linkedID sql.NullInt64
		var linkedKind, postStatus sql.NullString

		if err := rows.Scan(&u.RecordID, &u.UserID, &library, &indexerID, &u.Title,
			&u.Path, &u.NzbID, &u.State, &linkedKind, &linkedID, &postStatus); err != nil {
			return nil, fmt.Errorf("failed to scan usenet download: %w", err)
		}

		u.Library = nullableInt64(library)
		u.Indexer = nullableInt64(indexerID)
		u.PostStatus = nullableString(postStatus)
		if linkedKind.Valid && linkedID.Valid {
			u.Item = &source.LinkedItem{
				Kind: source.ItemKind(linkedKind.String),
				ID:   linkedID.Int64,
			}
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// MarkSourceProcessed sets a download's post-process status to processed.
func (s *Store) MarkSourceProcessed(ctx context.Context, kind source.Kind, sourceID int64) error {
	table, err := downloadTable(kind)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET post_process_status = ? WHERE id = ?", table),
		source.StatusProcessed, sourceID)
	if err != nil {
		return fmt.Errorf("failed to mark %s download %d processed: %w", kind, sourceID, err)
	}
	return nil
}

// CreateTorrentDownload records an accepted torrent download.
func (s *Store) CreateTorrentDownload(ctx context.Context, t *source.TorrentDownload) (int64, error) {
	var library, indexerID, linkedID interface{}
	var linkedKind interface{}
	if t.Library != nil {
		library = *t.Library
	}
	if t.Indexer != nil {
		indexerID = *t.Indexer
	}
	if t.Item != nil {
		linkedKind = string(t.Item.Kind)
		linkedID = t.Item.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO torrent_downloads
			(user_id, library_id, indexer_id, name, download_path, engine_id, state, linked_kind, linked_id, post_process_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, library, indexerID, t.Title, t.Path, t.EngineID, t.State, linkedKind, linkedID, t.PostStatus)
	if err != nil {
		return 0, fmt.Errorf("failed to insert torrent download: %w", err)
	}
	return res.LastInsertId()
}

// CreateUsenetDownload records an accepted usenet download.
func (s *Store) CreateUsenetDownload(ctx context.Context, u *source.UsenetDownload) (int64, error) {
	var library, indexerID, linkedID interface{}
	var linkedKind interface{}
	if u.Library != nil {
		library = *u.Library
	}
	if u.Indexer != nil {
		indexerID = *u.Indexer
	}
	if u.Item != nil {
		linkedKind = string(u.Item.Kind)
		linkedID = u.Item.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO usenet_downloads
			(user_id, library_id, indexer_id, name, download_path, nzb_id, state, linked_kind, linked_id, post_process_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, library, indexerID, u.Title, u.Path, u.NzbID, u.State, linkedKind, linkedID, u.PostStatus)
	if err != nil {
		return 0, fmt.Errorf("failed to insert usenet download: %w", err)
	}
	return res.LastInsertId()
}

// SetDownloadState updates the engine-reported state of a download.
func (s *Store) SetDownloadState(ctx context.Context, kind source.Kind, sourceID int64, state string) error {
	table, err := downloadTable(kind)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET state = ? WHERE id = ?", table), state, sourceID)
	if err != nil {
		return fmt.Errorf("failed to update %s download %d state: %w", kind, sourceID, err)
	}
	return nil
}

// PurgeProcessedDownloads deletes processed download records older than the
// given number of days. Used by the advisory cleanup job.
func (s *Store) PurgeProcessedDownloads(ctx context.Context, olderThanDays int) (int64, error) {
	var purged int64
	for _, table := range []string{"torrent_downloads", "usenet_downloads"} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s
				WHERE post_process_status = ?
				  AND created_at < datetime('now', ?)`, table),
			source.StatusProcessed, fmt.Sprintf("-%d days", olderThanDays))
		if err != nil {
			return purged, fmt.Errorf("failed to purge %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		purged += n
	}
	return purged, nil
}

func downloadTable(kind source.Kind) (string, error) {
	switch kind {
	case source.KindTorrent:
		return "torrent_downloads", nil
	case source.KindUsenet:
		return "usenet_downloads", nil
	default:
		return "", fmt.Errorf("no download table for source kind %q", kind)
	}
}
