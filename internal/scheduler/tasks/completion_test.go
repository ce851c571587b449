package tasks

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/downloads"
	downloadsmock "github.com/retriever-media/retriever/internal/downloads/mock"
	"github.com/retriever-media/retriever/internal/organizer"
	"github.com/retriever-media/retriever/internal/scheduler"
	"github.com/retriever-media/retriever/internal/source"
	"github.com/retriever-media/retriever/internal/store"
	"github.com/retriever-media/retriever/internal/testutil"
)

// A download recorded as "downloading" must be picked up once the engine
// reports it finished: the monitor syncs the state, imports the files and
// marks the source processed in a single run.
func TestCompletionTaskSyncsThenProcesses(t *testing.T) {
	db := testutil.NewTestDB(t)
	st := db.Store
	ctx := context.Background()

	libID, err := st.CreateLibrary(ctx, 1, "tv", "TV", "/tv", false, "standard")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	itemID, err := st.CreateLibraryItem(ctx, store.CreateItemParams{
		LibraryID: libID,
		Kind:      source.ItemEpisode,
		Title:     "Night Harbor",
		Season:    1,
		Episode:   1,
		Monitored: true,
	})
	if err != nil {
		t.Fatalf("CreateLibraryItem: %v", err)
	}

	engine := downloadsmock.NewEngine()
	engine.SetCompleteAfter(0)

	engineID, err := engine.Add(ctx, downloads.AddRequest{Name: "Night Harbor S01E01"})
	if err != nil {
		t.Fatalf("engine add: %v", err)
	}
	lib := libID
	dlID, err := st.CreateTorrentDownload(ctx, &source.TorrentDownload{
		Title:    "Night Harbor S01E01",
		UserID:   1,
		Library:  &lib,
		EngineID: engineID,
		State:    "downloading",
		Item:     &source.LinkedItem{Kind: source.ItemEpisode, ID: itemID},
	})
	if err != nil {
		t.Fatalf("CreateTorrentDownload: %v", err)
	}

	dl := downloads.NewService(engine, st, db.Logger)
	processor := completion.NewService(st, engine, organizer.NewService(db.Logger), db.Logger)

	sched, err := scheduler.New(db.Logger)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	t.Cleanup(func() { sched.Stop() })

	if err := RegisterCompletionTask(sched, processor, dl, &config.JobsConfig{}); err != nil {
		t.Fatalf("RegisterCompletionTask: %v", err)
	}
	if err := sched.RunNow("completion-monitor"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		var state string
		var post sql.NullString
		if err := db.Conn.QueryRowContext(ctx,
			`SELECT state, post_process_status FROM torrent_downloads WHERE id = ?`,
			dlID).Scan(&state, &post); err != nil {
			t.Fatalf("query download: %v", err)
		}
		if post.Valid && post.String == source.StatusProcessed {
			if state != "seeding" {
				t.Fatalf("state = %q, want seeding", state)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("download never processed: state=%q post=%+v", state, post)
		}
		time.Sleep(20 * time.Millisecond)
	}

	var files int
	if err := db.Conn.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM media_files WHERE item_id = ?`, itemID).Scan(&files); err != nil {
		t.Fatalf("query media files: %v", err)
	}
	if files != 1 {
		t.Fatalf("media files = %d, want 1", files)
	}
}
