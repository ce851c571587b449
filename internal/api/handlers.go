package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/torznab"
)

// handleSearch runs a priority-ordered hunt from query parameters. The
// parameters follow the Torznab convention (t, q, cat, season, ep, imdbid and
// friends) plus userId, libraryType, libraryId and all.
func (s *Server) handleSearch(c echo.Context) error {
	params := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	q, err := torznab.ParseQuery(params)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q.Categories = torznab.ExpandCategories(q.Categories)

	userID := int64(1)
	if v := c.QueryParam("userId"); v != "" {
		userID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
		}
	}

	if c.QueryParam("all") == "true" {
		result, err := s.huntService.SearchAll(c.Request().Context(), q, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, result)
	}

	var libraryID *int64
	if v := c.QueryParam("libraryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid libraryId")
		}
		libraryID = &id
	}
	libraryType := c.QueryParam("libraryType")

	huntCfg := hunt.Config{
		SearchAllSources:    s.cfg.Hunt.SearchAllSources,
		MaxResultsPerSource: s.cfg.Hunt.MaxResultsPerSource,
	}

	result, err := s.huntService.Search(c.Request().Context(), q, userID, libraryType, libraryID, &huntCfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// handleCategories returns the fixed Torznab category tree.
func (s *Server) handleCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, torznab.Categories())
}

// handleHuntItem hunts a single wanted item on demand.
func (s *Server) handleHuntItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	outcome, err := s.runner.RunItem(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, outcome)
}

// handleRunAutoHunt triggers a full auto-hunt pass in the background.
func (s *Server) handleRunAutoHunt(c echo.Context) error {
	if err := s.sched.RunNow("autohunt"); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}

// handleProcessDownloads triggers the completion monitor immediately.
func (s *Server) handleProcessDownloads(c echo.Context) error {
	if err := s.processor.ProcessCompletedDownloads(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "processed"})
}

// handleListTasks lists registered scheduled tasks.
func (s *Server) handleListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.ListTasks())
}

// handleRunTask triggers one scheduled task immediately.
func (s *Server) handleRunTask(c echo.Context) error {
	taskID := c.Param("id")
	if err := s.sched.RunNow(taskID); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started", "task": taskID})
}
