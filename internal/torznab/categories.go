// Package torznab implements the Torznab-compatible category taxonomy and the
// typed search query model.
package torznab

import "sort"

// Standard Newznab category ids.
// https://newznab.readthedocs.io/en/latest/misc/api/#predefined-categories
//
// These numeric values are an externally visible contract relied on by
// third-party Torznab tools and must never be renumbered.
const (
	// Main categories
	CategoryConsole = 1000
	CategoryMovies  = 2000
	CategoryAudio   = 3000
	CategoryPC      = 4000
	CategoryTV      = 5000
	CategoryXXX     = 6000
	CategoryBooks   = 7000
	CategoryOther   = 8000

	// Movies subcategories
	CategoryMoviesForeign = 2010
	CategoryMoviesOther   = 2020
	CategoryMoviesSD      = 2030
	CategoryMoviesHD      = 2040
	CategoryMoviesUHD     = 2045
	CategoryMoviesBluRay  = 2050
	CategoryMovies3D      = 2060
	CategoryMoviesDVD     = 2070
	CategoryMoviesWebDL   = 2080

	// Audio subcategories
	CategoryAudioMP3       = 3010
	CategoryAudioVideo     = 3020
	CategoryAudioAudiobook = 3030
	CategoryAudioLossless  = 3040

	// TV subcategories
	CategoryTVForeign = 5010
	CategoryTVOther   = 5020
	CategoryTVSD      = 5030
	CategoryTVHD      = 5040
	CategoryTVUHD     = 5045
	CategoryTVSport   = 5060
	CategoryTVAnime   = 5070
	CategoryTVDoc     = 5080
	CategoryTVWebDL   = 5090

	// Books subcategories
	CategoryBooksMags   = 7010
	CategoryBooksEBook  = 7020
	CategoryBooksComics = 7030
)

// Category is one node of the fixed category hierarchy.
type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Parent int    `json:"parent,omitempty"` // 0 = top-level
}

// categories is the full static hierarchy. Every id has at most one parent and
// the tree is exactly two levels deep.
var categories = []Category{
	{ID: CategoryConsole, Name: "Console"},
	{ID: CategoryMovies, Name: "Movies"},
	{ID: CategoryMoviesForeign, Name: "Movies/Foreign", Parent: CategoryMovies},
	{ID: CategoryMoviesOther, Name: "Movies/Other", Parent: CategoryMovies},
	{ID: CategoryMoviesSD, Name: "Movies/SD", Parent: CategoryMovies},
	{ID: CategoryMoviesHD, Name: "Movies/HD", Parent: CategoryMovies},
	{ID: CategoryMoviesUHD, Name: "Movies/UHD", Parent: CategoryMovies},
	{ID: CategoryMoviesBluRay, Name: "Movies/BluRay", Parent: CategoryMovies},
	{ID: CategoryMovies3D, Name: "Movies/3D", Parent: CategoryMovies},
	{ID: CategoryMoviesDVD, Name: "Movies/DVD", Parent: CategoryMovies},
	{ID: CategoryMoviesWebDL, Name: "Movies/WEB-DL", Parent: CategoryMovies},
	{ID: CategoryAudio, Name: "Audio"},
	{ID: CategoryAudioMP3, Name: "Audio/MP3", Parent: CategoryAudio},
	{ID: CategoryAudioVideo, Name: "Audio/Video", Parent: CategoryAudio},
	{ID: CategoryAudioAudiobook, Name: "Audio/Audiobook", Parent: CategoryAudio},
	{ID: CategoryAudioLossless, Name: "Audio/Lossless", Parent: CategoryAudio},
	{ID: CategoryPC, Name: "PC"},
	{ID: CategoryTV, Name: "TV"},
	{ID: CategoryTVForeign, Name: "TV/Foreign", Parent: CategoryTV},
	{ID: CategoryTVOther, Name: "TV/Other", Parent: CategoryTV},
	{ID: CategoryTVSD, Name: "TV/SD", Parent: CategoryTV},
	{ID: CategoryTVHD, Name: "TV/HD", Parent: CategoryTV},
	{ID: CategoryTVUHD, Name: "TV/UHD", Parent: CategoryTV},
	{ID: CategoryTVSport, Name: "TV/Sport", Parent: CategoryTV},
	{ID: CategoryTVAnime, Name: "TV/Anime", Parent: CategoryTV},
	{ID: CategoryTVDoc, Name: "TV/Documentary", Parent: CategoryTV},
	{ID: CategoryTVWebDL, Name: "TV/WEB-DL", Parent: CategoryTV},
	{ID: CategoryXXX, Name: "XXX"},
	{ID: CategoryBooks, Name: "Books"},
	{ID: CategoryBooksMags, Name: "Books/Mags", Parent: CategoryBooks},
	{ID: CategoryBooksEBook, Name: "Books/EBook", Parent: CategoryBooks},
	{ID: CategoryBooksComics, Name: "Books/Comics", Parent: CategoryBooks},
	{ID: CategoryOther, Name: "Other"},
}

// Categories returns the full static hierarchy.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryName returns a human-readable name for a category id.
func CategoryName(id int) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}

// ExpandCategories expands each requested id to include its direct children
// and returns the sorted, de-duplicated union. Expansion is idempotent:
// children have no children of their own, so re-expanding an expanded set
// yields the same set.
func ExpandCategories(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
		for _, c := range categories {
			if c.Parent == id {
				seen[c.ID] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// IsMovieCategory returns true if the category is in the movie range.
func IsMovieCategory(id int) bool {
	return id >= 2000 && id < 3000
}

// IsTVCategory returns true if the category is in the TV range.
func IsTVCategory(id int) bool {
	return id >= 5000 && id < 6000
}
