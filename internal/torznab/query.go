package torznab

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryKind is the Torznab search mode.
type QueryKind string

const (
	KindSearch      QueryKind = "search"
	KindTvSearch    QueryKind = "tvsearch"
	KindMovieSearch QueryKind = "movie"
	KindMusicSearch QueryKind = "music"
	KindBookSearch  QueryKind = "book"
	KindCaps        QueryKind = "caps"
)

// Query is the typed search query built from loosely-typed request
// parameters. Fields outside the selected kind are advisory only.
type Query struct {
	Kind       QueryKind `json:"kind"`
	Term       string    `json:"term,omitempty"`
	Categories []int     `json:"categories,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Whether cached indexer responses may satisfy this query.
	CacheAllowed bool `json:"cacheAllowed"`

	// TV
	Season  int `json:"season,omitempty"`
	Episode int `json:"episode,omitempty"`

	// External ids
	ImdbID   string `json:"imdbId,omitempty"`
	TvdbID   int    `json:"tvdbId,omitempty"`
	TmdbID   int    `json:"tmdbId,omitempty"`
	TvMazeID int    `json:"tvMazeId,omitempty"`
	TraktID  int    `json:"traktId,omitempty"`
	DoubanID int    `json:"doubanId,omitempty"`

	// Music
	Album  string `json:"album,omitempty"`
	Artist string `json:"artist,omitempty"`
	Label  string `json:"label,omitempty"`
	Track  string `json:"track,omitempty"`

	// Books
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Publisher string `json:"publisher,omitempty"`

	Year  int    `json:"year,omitempty"`
	Genre string `json:"genre,omitempty"`
}

// ParseQueryKind normalizes a raw "t" parameter to a query kind.
func ParseQueryKind(raw string) (QueryKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "search":
		return KindSearch, nil
	case "tvsearch", "tv-search":
		return KindTvSearch, nil
	case "movie", "moviesearch", "movie-search":
		return KindMovieSearch, nil
	case "music", "musicsearch", "music-search", "audio":
		return KindMusicSearch, nil
	case "book", "booksearch", "book-search":
		return KindBookSearch, nil
	case "caps":
		return KindCaps, nil
	default:
		return "", fmt.Errorf("unknown query type %q", raw)
	}
}

// ParseQuery maps a loosely-typed parameter bag (typically HTTP query params)
// to a typed Query.
func ParseQuery(params map[string]string) (*Query, error) {
	kind, err := ParseQueryKind(params["t"])
	if err != nil {
		return nil, err
	}

	q := &Query{
		Kind:         kind,
		Term:         params["q"],
		Categories:   parseCategoryList(params["cat"]),
		Limit:        parseInt(params["limit"]),
		Offset:       parseInt(params["offset"]),
		CacheAllowed: parseCacheFlag(params["cache"]),
		Season:       parseInt(params["season"]),
		Episode:      parseInt(params["ep"]),
		TvdbID:       parseInt(params["tvdbid"]),
		TmdbID:       parseInt(params["tmdbid"]),
		TvMazeID:     parseInt(params["tvmazeid"]),
		TraktID:      parseInt(params["traktid"]),
		DoubanID:     parseInt(params["doubanid"]),
		Album:        params["album"],
		Artist:       params["artist"],
		Label:        params["label"],
		Track:        params["track"],
		Title:        params["title"],
		Author:       params["author"],
		Publisher:    params["publisher"],
		Year:         parseInt(params["year"]),
		Genre:        params["genre"],
	}

	if raw := params["imdbid"]; raw != "" {
		q.ImdbID = NormalizeImdbID(raw)
	}

	return q, nil
}

// NormalizeImdbID normalizes an IMDB id to the canonical "tt"-prefixed form.
// Values that already carry the prefix are kept as-is; bare numeric values
// have leading zeros stripped before the prefix is added.
func NormalizeImdbID(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "tt") {
		return raw
	}
	return "tt" + strings.TrimLeft(raw, "0")
}

// parseCategoryList parses a comma-separated category id list, silently
// dropping tokens that are not integers.
func parseCategoryList(raw string) []int {
	if raw == "" {
		return nil
	}
	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// parseCacheFlag parses the cache parameter; cache is allowed unless
// explicitly disabled.
func parseCacheFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "false", "0":
		return false
	default:
		return true
	}
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
