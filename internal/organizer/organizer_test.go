package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/source"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestOrganizeFile(t *testing.T) {
	svc := NewService(zerolog.Nop())

	t.Run("episode moves into season folder", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "downloads", "raw.mkv")
		writeFile(t, src)

		libPath := filepath.Join(tmp, "tv")
		newPath, err := svc.OrganizeFile(context.Background(), completion.OrganizeRequest{
			SourcePath:  src,
			LibraryPath: libPath,
			Show:        &completion.Show{Title: "Night Harbor"},
			Item:        &completion.Item{Kind: source.ItemEpisode, Season: 1, Episode: 2},
		})
		if err != nil {
			t.Fatalf("OrganizeFile error: %v", err)
		}

		want := filepath.Join(libPath, "Night Harbor", "Season 01", "Night Harbor - S01E02.mkv")
		if newPath != want {
			t.Fatalf("newPath = %q, want %q", newPath, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("file not moved: %v", err)
		}
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Fatal("source file should be gone")
		}
	})

	t.Run("movie renamed to title", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "downloads", "raw.mp4")
		writeFile(t, src)

		libPath := filepath.Join(tmp, "movies")
		newPath, err := svc.OrganizeFile(context.Background(), completion.OrganizeRequest{
			SourcePath:  src,
			LibraryPath: libPath,
			Item:        &completion.Item{Kind: source.ItemMovie, Title: "The Long Orbit"},
		})
		if err != nil {
			t.Fatalf("OrganizeFile error: %v", err)
		}
		want := filepath.Join(libPath, "The Long Orbit.mp4")
		if newPath != want {
			t.Fatalf("newPath = %q, want %q", newPath, want)
		}
	})

	t.Run("rename style none keeps filename", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "downloads", "raw.mkv")
		writeFile(t, src)

		libPath := filepath.Join(tmp, "movies")
		newPath, err := svc.OrganizeFile(context.Background(), completion.OrganizeRequest{
			SourcePath:  src,
			LibraryPath: libPath,
			RenameStyle: "none",
			Item:        &completion.Item{Kind: source.ItemMovie, Title: "Ignored"},
		})
		if err != nil {
			t.Fatalf("OrganizeFile error: %v", err)
		}
		if filepath.Base(newPath) != "raw.mkv" {
			t.Fatalf("newPath = %q, want original filename kept", newPath)
		}
	})

	t.Run("missing library path fails", func(t *testing.T) {
		if _, err := svc.OrganizeFile(context.Background(), completion.OrganizeRequest{SourcePath: "/x.mkv"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("show path wins over library path", func(t *testing.T) {
		tmp := t.TempDir()
		src := filepath.Join(tmp, "downloads", "raw.mkv")
		writeFile(t, src)

		showPath := filepath.Join(tmp, "custom", "Show Dir")
		newPath, err := svc.OrganizeFile(context.Background(), completion.OrganizeRequest{
			SourcePath:  src,
			LibraryPath: filepath.Join(tmp, "tv"),
			Show:        &completion.Show{Title: "Show", Path: showPath},
			Item:        &completion.Item{Kind: source.ItemEpisode, Season: 2, Episode: 5},
		})
		if err != nil {
			t.Fatalf("OrganizeFile error: %v", err)
		}
		want := filepath.Join(showPath, "Season 02", "Show - S02E05.mkv")
		if newPath != want {
			t.Fatalf("newPath = %q, want %q", newPath, want)
		}
	})
}

func TestSanitize(t *testing.T) {
	if got := sanitize(`A/B\C:D*E?F"G<H>I|J`); got != `A-B-C-D E F'G H I J` {
		t.Fatalf("sanitize = %q", got)
	}
}
