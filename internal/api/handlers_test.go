package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/downloads"
	downloadsmock "github.com/retriever-media/retriever/internal/downloads/mock"
	"github.com/retriever-media/retriever/internal/events"
	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/indexer"
	indexermock "github.com/retriever-media/retriever/internal/indexer/mock"
	"github.com/retriever-media/retriever/internal/organizer"
	"github.com/retriever-media/retriever/internal/scheduler"
	"github.com/retriever-media/retriever/internal/source"
	"github.com/retriever-media/retriever/internal/store"
	"github.com/retriever-media/retriever/internal/testutil"
)

// newTestServer wires a server over a migrated database and the mock
// backends.
func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	db := testutil.NewTestDB(t)
	st := db.Store
	ctx := context.Background()

	if _, err := st.CreateIndexer(ctx, &indexer.Definition{UserID: 1, Name: "alpha", Priority: 1, Enabled: true}); err != nil {
		t.Fatalf("seed indexer: %v", err)
	}

	searcher := indexermock.NewSearcher([]indexer.Definition{
		{ID: 1, UserID: 1, Name: "alpha", Priority: 1, Enabled: true},
	})

	engine := downloadsmock.NewEngine()
	resolver := hunt.NewResolver(st, db.Logger)
	huntService := hunt.NewService(searcher, resolver, db.Logger)
	downloadService := downloads.NewService(engine, st, db.Logger)
	runner := hunt.NewRunner(huntService, st, downloadService.Grab, hunt.Config{}, db.Logger)

	org := organizer.NewService(db.Logger)
	processor := completion.NewService(st, engine, org, db.Logger)

	sched, err := scheduler.New(db.Logger)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	t.Cleanup(func() { sched.Stop() })

	cfg := config.Default()
	hub := events.NewHub()
	go hub.Run()

	return NewServer(cfg, hub, huntService, runner, processor, sched, db.Logger), st
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?t=tvsearch&q=night+harbor&userId=1", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result hunt.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, hunt.DefaultRuleDescription, result.AppliedRule)
	assert.Equal(t, 1, result.SourcesSearched)
	assert.NotEmpty(t, result.Releases)
	assert.NotEmpty(t, result.RequestID)
}

func TestHandleSearchBadKind(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?t=bogus", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cats []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.NotEmpty(t, cats)
}

func TestHandleHuntItem(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	libID, err := st.CreateLibrary(ctx, 1, "tv", "TV", "/tv", false, "standard")
	require.NoError(t, err)
	itemID, err := st.CreateLibraryItem(ctx, store.CreateItemParams{
		LibraryID: libID,
		Kind:      source.ItemEpisode,
		Title:     "Night Harbor",
		Season:    1,
		Episode:   1,
		Monitored: true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/items/"+strconv.FormatInt(itemID, 10)+"/hunt", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var outcome hunt.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, 1, outcome.Searched)
	assert.Equal(t, 1, outcome.Matched)
	assert.Equal(t, 1, outcome.Downloaded)
}

func TestHandleHuntItemUnknown(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/999/hunt", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
