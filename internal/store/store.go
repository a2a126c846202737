// Package store manages the output directory. A video counts as downloaded
// once a WebVTT file whose name starts with its zero-padded ID exists there.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/models"
)

const (
	// VTTExt marks a completed download
	VTTExt = ".vtt"
	// TextExt is the plain-text transcript written next to the WebVTT file
	TextExt = ".txt"

	// maxTitleBytes keeps file names well below the common 255-byte limit
	maxTitleBytes = 180
)

var (
	reservedChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f\x7f]`)
	spaceRuns     = regexp.MustCompile(`\s+`)
)

// Store writes transcripts into a directory and answers whether a video
// has already been downloaded.
type Store struct {
	dir      string
	existing map[int]struct{}
}

// New opens dir, creating it if absent, and indexes the videos already stored there
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s := &Store{dir: dir}
	existing, err := s.scan()
	if err != nil {
		return nil, err
	}
	s.existing = existing

	if len(existing) > 0 {
		logger := config.GetLogger()
		logger.Info().
			Int("count", len(existing)).
			Str("dir", dir).
			Msg("Found already downloaded videos, they will be skipped")
	}

	return s, nil
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether the video with the given ID is already stored
func (s *Store) Has(id int) bool {
	_, ok := s.existing[id]
	return ok
}

// Len returns the number of stored videos
func (s *Store) Len() int {
	return len(s.existing)
}

func (s *Store) scan() (map[int]struct{}, error) {
	logger := config.GetLogger()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list output directory: %w", err)
	}

	ids := make(map[int]struct{})
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, VTTExt) {
			continue
		}
		id, ok := leadingID(name)
		if !ok {
			logger.Debug().Str("file", name).Msg("Skipping file without a leading video ID")
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// leadingID parses the first whitespace-delimited field of a stored file name
func leadingID(name string) (int, bool) {
	fields := strings.Fields(strings.TrimSuffix(name, VTTExt))
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// BaseName returns the file name, without extension, used for a video
func BaseName(video models.Video) string {
	title := SanitizeTitle(video.Title())
	if title == "" {
		return fmt.Sprintf("%04d", video.ID)
	}
	return fmt.Sprintf("%04d %s", video.ID, title)
}

// SanitizeTitle makes a title safe to use in a file name on common file systems
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	// Whitespace first: tabs and newlines are also control characters.
	title = spaceRuns.ReplaceAllString(title, " ")
	title = reservedChars.ReplaceAllString(title, "_")
	title = strings.Trim(title, " .")

	if len(title) > maxTitleBytes {
		cut := maxTitleBytes
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimRight(title[:cut], " .")
	}
	return title
}

// Write stores the rendered documents of a video. The plain-text file is
// written first and the WebVTT file last, each through a temporary file and
// a rename, so an interrupted write never marks the video as downloaded.
func (s *Store) Write(result *models.DownloadResult) (string, error) {
	if s.Has(result.Video.ID) {
		return "", fmt.Errorf("video %d is already stored", result.Video.ID)
	}

	base := filepath.Join(s.dir, BaseName(result.Video))
	if err := writeAtomic(base+TextExt, result.PlainText); err != nil {
		return "", err
	}
	vttPath := base + VTTExt
	if err := writeAtomic(vttPath, result.WebVTT); err != nil {
		return "", err
	}

	s.existing[result.Video.ID] = struct{}{}
	return vttPath, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cijsubs-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}
