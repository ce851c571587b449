// Package organizer moves and renames completed media files into the
// library's layout.
package organizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/source"
)

// Service provides file organization operations. It implements the
// completion package's Organizer capability.
type Service struct {
	logger zerolog.Logger
}

// NewService creates a new organizer service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger: logger.With().Str("component", "organizer").Logger(),
	}
}

// OrganizeFile moves a file into the library per the active naming style and
// returns its new path.
func (s *Service) OrganizeFile(ctx context.Context, req completion.OrganizeRequest) (string, error) {
	if req.LibraryPath == "" {
		return "", fmt.Errorf("no library path to organize into")
	}

	destPath := s.destinationPath(req)
	if destPath == req.SourcePath {
		return destPath, nil
	}

	if err := s.moveFile(req.SourcePath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// destinationPath builds the target path for one file.
func (s *Service) destinationPath(req completion.OrganizeRequest) string {
	filename := filepath.Base(req.SourcePath)
	ext := filepath.Ext(filename)

	dir := req.LibraryPath
	if req.Show != nil {
		if req.Show.Path != "" {
			dir = req.Show.Path
		} else {
			dir = filepath.Join(dir, sanitize(req.Show.Title))
		}
		if req.Item != nil && req.Item.Season > 0 {
			dir = filepath.Join(dir, fmt.Sprintf("Season %02d", req.Item.Season))
		}
	}

	if req.Item == nil || req.RenameStyle == "none" {
		return filepath.Join(dir, filename)
	}

	switch req.Item.Kind {
	case source.ItemEpisode:
		if req.Show != nil {
			return filepath.Join(dir, fmt.Sprintf("%s - S%02dE%02d%s",
				sanitize(req.Show.Title), req.Item.Season, req.Item.Episode, ext))
		}
		return filepath.Join(dir, fmt.Sprintf("%s - S%02dE%02d%s",
			sanitize(req.Item.Title), req.Item.Season, req.Item.Episode, ext))
	case source.ItemMovie:
		return filepath.Join(dir, sanitize(req.Item.Title)+ext)
	default:
		return filepath.Join(dir, filename)
	}
}

// moveFile moves a file, creating directories as needed. Rename is tried
// first; cross-filesystem moves fall back to copy + delete.
func (s *Service) moveFile(sourcePath, destPath string) error {
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(sourcePath, destPath); err == nil {
		s.logger.Info().
			Str("source", sourcePath).
			Str("dest", destPath).
			Msg("Moved file")
		return nil
	}

	if err := s.copyFile(sourcePath, destPath); err != nil {
		return err
	}

	if err := os.Remove(sourcePath); err != nil {
		s.logger.Warn().Err(err).Str("path", sourcePath).Msg("Failed to remove source file after copy")
	}

	s.logger.Info().
		Str("source", sourcePath).
		Str("dest", destPath).
		Msg("Moved file (copy + delete)")
	return nil
}

func (s *Service) copyFile(sourcePath, destPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}

// sanitize strips characters that are unsafe in file names.
func sanitize(name string) string {
	replacer := map[rune]rune{
		'/': '-', '\\': '-', ':': '-', '*': ' ', '?': ' ',
		'"': '\'', '<': ' ', '>': ' ', '|': ' ',
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if rep, ok := replacer[r]; ok {
			r = rep
		}
		out = append(out, r)
	}
	return string(out)
}
