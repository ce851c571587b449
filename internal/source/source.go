// Package source defines the polymorphic download-source capability shared by
// every download backend. Components downstream of the acquisition pipeline
// (matching, organizing, status updates) are written once against this
// capability instead of once per download engine.
package source

// Kind identifies the backend protocol a download came from.
type Kind string

const (
	KindTorrent Kind = "torrent"
	KindUsenet  Kind = "usenet"

	// Recognized but not backed by any engine yet.
	KindIrc    Kind = "irc"
	KindFtp    Kind = "ftp"
	KindHttp   Kind = "http"
	KindManual Kind = "manual"
	KindOther  Kind = "other"
)

// ItemKind identifies the library entity a download is intended to satisfy.
type ItemKind string

const (
	ItemEpisode   ItemKind = "episode"
	ItemMovie     ItemKind = "movie"
	ItemAlbum     ItemKind = "album"
	ItemAudiobook ItemKind = "audiobook"
	ItemTvShow    ItemKind = "tvshow"
	ItemArtist    ItemKind = "artist"
	ItemTrack     ItemKind = "track"
)

// LinkedItem ties a download to the specific library entity it was grabbed
// for. At most one (Kind, ID) pair is populated per download; a nil LinkedItem
// means the download has no library link yet.
type LinkedItem struct {
	Kind ItemKind `json:"kind"`
	ID   int64    `json:"id"`
}

// Post-process status values tracked on a download record.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
)

// DownloadSource is the capability every concrete download record exposes.
// Pure accessors, no side effects.
type DownloadSource interface {
	ID() int64
	Name() string
	SourceKind() Kind
	DownloadPath() string
	OwnerID() int64
	LibraryID() *int64
	Linked() *LinkedItem
	IndexerID() *int64
	PostProcessStatus() *string
}

// TorrentDownload is the torrent-backed download record.
type TorrentDownload struct {
	RecordID   int64
	Title      string
	Path       string
	UserID     int64
	Library    *int64
	Item       *LinkedItem
	Indexer    *int64
	EngineID   string // hash/id inside the torrent engine
	State      string // engine-reported state
	PostStatus *string
}

func (t *TorrentDownload) ID() int64                  { return t.RecordID }
func (t *TorrentDownload) Name() string               { return t.Title }
func (t *TorrentDownload) SourceKind() Kind           { return KindTorrent }
func (t *TorrentDownload) DownloadPath() string       { return t.Path }
func (t *TorrentDownload) OwnerID() int64             { return t.UserID }
func (t *TorrentDownload) LibraryID() *int64          { return t.Library }
func (t *TorrentDownload) Linked() *LinkedItem        { return t.Item }
func (t *TorrentDownload) IndexerID() *int64          { return t.Indexer }
func (t *TorrentDownload) PostProcessStatus() *string { return t.PostStatus }

// UsenetDownload is the Usenet-backed download record.
type UsenetDownload struct {
	RecordID   int64
	Title      string
	Path       string
	UserID     int64
	Library    *int64
	Item       *LinkedItem
	Indexer    *int64
	NzbID      string
	State      string
	PostStatus *string
}

func (u *UsenetDownload) ID() int64                  { return u.RecordID }
func (u *UsenetDownload) Name() string               { return u.Title }
func (u *UsenetDownload) SourceKind() Kind           { return KindUsenet }
func (u *UsenetDownload) DownloadPath() string       { return u.Path }
func (u *UsenetDownload) OwnerID() int64             { return u.UserID }
func (u *UsenetDownload) LibraryID() *int64          { return u.Library }
func (u *UsenetDownload) Linked() *LinkedItem        { return u.Item }
func (u *UsenetDownload) IndexerID() *int64          { return u.Indexer }
func (u *UsenetDownload) PostProcessStatus() *string { return u.PostStatus }

// NeedsProcessing reports whether a source is still waiting for
// download-completion handling.
func NeedsProcessing(s DownloadSource) bool {
	st := s.PostProcessStatus()
	return st == nil || *st == StatusPending
}
