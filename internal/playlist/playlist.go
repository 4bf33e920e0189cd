package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"playsync/internal/model"
)

// Entry is one playlist line candidate.
type Entry struct {
	Title string

	// Path is the absolute path of the media file. Entries whose file
	// does not exist on disk are left out of the rendered playlist.
	Path string
}

// Writer generates M3U playlist files.
//
// The output lists bare filenames, assuming the playlist lives in the
// same directory as the media files. With extended enabled each entry is
// preceded by an #EXTINF line; durations are not tracked, so the length
// field is -1 as the M3U convention allows.
type Writer struct {
	extended bool
}

// NewWriter creates a Writer. extended controls #EXTINF emission.
func NewWriter(extended bool) *Writer {
	return &Writer{extended: extended}
}

// Render generates M3U content for the given entries, in order. Entries
// pointing at missing files are skipped.
func (w *Writer) Render(entries []Entry) string {
	var sb strings.Builder

	if w.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if _, err := os.Stat(e.Path); err != nil {
			continue
		}
		if w.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", e.Title))
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// Write renders the entries and writes `<title>.m3u` (title sanitized)
// into dir. Returns the playlist path.
func (w *Writer) Write(dir, title string, entries []Entry) (string, error) {
	path := filepath.Join(dir, model.SanitizeFileName(title)+".m3u")
	if err := os.WriteFile(path, []byte(w.Render(entries)), 0644); err != nil {
		return "", fmt.Errorf("failed to write playlist: %w", err)
	}
	return path, nil
}
