package materialize

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"playsync/internal/logging"
	"playsync/internal/plan"
)

var (
	// ErrSourceVanished indicates the archived source disappeared between
	// planning and acting. The caller should downgrade the item to a
	// download, not fail it.
	ErrSourceVanished = errors.New("materialize: source file vanished")

	// ErrIntegrityMismatch indicates the copied destination did not match
	// the source size. The partial destination has been removed.
	ErrIntegrityMismatch = errors.New("materialize: size mismatch after copy")
)

// Result describes a successful materialization.
type Result struct {
	// Path is the destination file.
	Path string

	// Size is the destination size in bytes, equal to the source size.
	Size int64

	// Linked is true when the destination is a hardlink to the source
	// rather than an independent copy.
	Linked bool
}

// Materializer executes copy-class decisions: hardlink when planned, byte
// copy otherwise, with transparent fallback from hardlink to copy. It
// creates exactly one destination file per successful call and never
// mutates the source.
type Materializer struct {
	logger *slog.Logger

	// link is swappable so tests can force the hardlink path to fail.
	link func(src, dst string) error
}

// New creates a Materializer.
func New(logger *slog.Logger) *Materializer {
	return &Materializer{
		logger: logging.WithComponent(logger, "materializer"),
		link:   os.Link,
	}
}

// Materialize executes a HardlinkCopy or FallbackCopy decision. Skip and
// Download decisions are not materializable and return an error.
//
// The source's existence is re-verified immediately before acting: it may
// have vanished since planning, and acting on the stale plan would leave a
// broken destination. Hardlink failures of any kind (cross-volume, no
// filesystem support, permissions) fall back to a full size-verified copy;
// the caller only sees an error when the fallback fails too.
func (m *Materializer) Materialize(d plan.Decision) (Result, error) {
	switch d.Action {
	case plan.HardlinkCopy, plan.FallbackCopy:
	default:
		return Result{}, fmt.Errorf("decision %v is not materializable", d.Action)
	}

	srcInfo, err := os.Stat(d.SourcePath)
	if err != nil || srcInfo.Size() == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrSourceVanished, d.SourcePath)
	}

	if d.Action == plan.HardlinkCopy {
		if err := m.link(d.SourcePath, d.DestPath); err == nil {
			m.logger.Debug("hardlinked from archive",
				slog.String("source", d.SourcePath),
				slog.String("dest", d.DestPath))
			return Result{Path: d.DestPath, Size: srcInfo.Size(), Linked: true}, nil
		} else {
			m.logger.Debug("hardlink failed, falling back to copy",
				slog.String("dest", d.DestPath),
				slog.Any("error", err))
		}
	}

	size, err := copyVerified(d.SourcePath, d.DestPath, srcInfo.Size())
	if err != nil {
		return Result{}, err
	}

	m.logger.Debug("copied from archive",
		slog.String("source", d.SourcePath),
		slog.String("dest", d.DestPath))
	return Result{Path: d.DestPath, Size: size}, nil
}

// copyVerified streams src to dst and verifies the byte count against the
// expected source size. On mismatch the destination is removed so no
// partial file is left behind.
func copyVerified(src, dst string, want int64) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSourceVanished, src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, err
	}

	if written != want {
		os.Remove(dst)
		return 0, fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrIntegrityMismatch, want, written)
	}

	return written, nil
}
