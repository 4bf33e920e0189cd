package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PlaylistItem is a lightweight descriptor for one entry of a remote
// collection, produced by a flat playlist scan. It carries only what the
// planner needs: no codec or container metadata is resolved until an item
// is actually fetched.
//
// Position defines a total order over the collection and is preserved all
// the way through to playlist-file generation.
type PlaylistItem struct {
	// Position is the 0-based index of the item in the collection.
	Position int

	// RemoteID is the stable identifier assigned by the remote service.
	RemoteID string

	// Title is the display title reported by the flat listing.
	Title string

	// SourceURL is the address an engine can fetch the item from.
	SourceURL string
}

// FetchResult describes a file produced by a download engine.
type FetchResult struct {
	// Path is the absolute path of the fetched file.
	Path string

	// Size is the fetched file size in bytes.
	Size int64
}

// DestFileName computes the local filename for a title in the given format.
//
// The title is sanitized for cross-platform use and the format's default
// extension is appended:
//
//	DestFileName("Song: Part 1/2", FormatMP3) // "Song_ Part 1_2.mp3"
func DestFileName(title string, f Format) string {
	if title == "" {
		title = "unknown"
	}
	return SanitizeFileName(title) + f.DefaultExt()
}

// DestPath computes the full local path for a title inside dir.
func DestPath(dir, title string, f Format) string {
	return filepath.Join(dir, DestFileName(title, f))
}

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	multiWhitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func SanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiWhitespace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
