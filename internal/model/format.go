package model

import (
	"fmt"
	"strings"
)

// Format identifies the requested output container for an item.
//
// The same remote item requested in two different formats is two distinct
// logical items: format is part of the archive fingerprint.
type Format string

const (
	// FormatMP3 is audio-only, transcoded to MP3.
	FormatMP3 Format = "mp3"

	// FormatMKV is video in an MKV container.
	FormatMKV Format = "mkv"

	// FormatMP4 is video in an MP4 container.
	FormatMP4 Format = "mp4"

	// FormatNative is audio in whatever container the remote serves,
	// with no conversion.
	FormatNative Format = "native"
)

// ParseFormat converts a user-supplied string into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMP3:
		return FormatMP3, nil
	case FormatMKV:
		return FormatMKV, nil
	case FormatMP4:
		return FormatMP4, nil
	case FormatNative:
		return FormatNative, nil
	}
	return "", fmt.Errorf("unknown format %q (want mp3, mkv, mp4, or native)", s)
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// DefaultExt returns the extension, including the dot, that a file of this
// format is written under. Native audio has no fixed container; .m4a is the
// most common result and is used when nothing better is known.
func (f Format) DefaultExt() string {
	switch f {
	case FormatMP3:
		return ".mp3"
	case FormatMKV:
		return ".mkv"
	case FormatMP4:
		return ".mp4"
	case FormatNative:
		return ".m4a"
	default:
		return ".mp3"
	}
}

// Extensions returns the set of local file extensions that may hold an item
// of this format. Used when adopting pre-existing files and when probing for
// an already-materialized destination.
func (f Format) Extensions() []string {
	switch f {
	case FormatMP3:
		return []string{".mp3"}
	case FormatNative:
		return []string{".m4a", ".opus", ".webm", ".mp3", ".aac"}
	case FormatMKV, FormatMP4:
		return []string{".mp4", ".mkv", ".webm", ".avi"}
	default:
		return []string{f.DefaultExt()}
	}
}

// IsAudio reports whether the format is an audio-only variant.
func (f Format) IsAudio() bool {
	return f == FormatMP3 || f == FormatNative
}
