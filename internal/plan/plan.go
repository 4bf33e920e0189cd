package plan

import (
	"log/slog"
	"os"

	"playsync/internal/archive"
	"playsync/internal/logging"
	"playsync/internal/model"
)

// Action is the closed set of things that can happen to one playlist item.
type Action int

const (
	// Skip means the destination already holds the item.
	Skip Action = iota

	// HardlinkCopy means materialize by hardlinking an archived file on
	// the same volume.
	HardlinkCopy

	// FallbackCopy means materialize by byte-copying an archived file
	// that lives on a different volume.
	FallbackCopy

	// Download means the item is not available locally and must be
	// fetched by the download engine.
	Download
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case HardlinkCopy:
		return "hardlink"
	case FallbackCopy:
		return "copy"
	case Download:
		return "download"
	default:
		return "unknown"
	}
}

// Decision is the planner's verdict for one item. Exactly one decision is
// computed per item per session, from the archive index snapshot at
// planning time; the materializer re-verifies the source right before
// acting to close the plan/act race.
type Decision struct {
	Action      Action
	Item        model.PlaylistItem
	Fingerprint archive.Fingerprint

	// SourcePath is the archived file to copy from. Set for the copy
	// actions only.
	SourcePath string

	// DestPath is where the item materializes. Set for all actions but
	// Download, where the engine picks its own output name.
	DestPath string

	// Title is the effective title: the archive's when an entry was
	// found, the listing's otherwise.
	Title string
}

// Planner turns scanned items into copy/skip/download decisions by
// consulting the archive index.
type Planner struct {
	store   *archive.Store
	format  model.Format
	destDir string
	logger  *slog.Logger
}

// New creates a Planner for one sync session targeting destDir.
func New(store *archive.Store, format model.Format, destDir string, logger *slog.Logger) *Planner {
	return &Planner{
		store:   store,
		format:  format,
		destDir: destDir,
		logger:  logging.WithComponent(logger, "planner"),
	}
}

// Plan decides what to do with one item.
//
// The sequence mirrors the archive-first prepass of the session cache:
// exact fingerprint lookup, then title fallback, then a cheap existence
// check on the archived file (a vanished file self-heals to Download and
// the stale entry is dropped lazily), then a same-volume probe to pick
// hardlink over byte copy. A destination file that already exists wins
// over everything: re-running a finished sync is all skips.
func (p *Planner) Plan(item model.PlaylistItem) Decision {
	fp := archive.Key(item.RemoteID, p.format)

	d := Decision{
		Item:        item,
		Fingerprint: fp,
		Title:       item.Title,
		DestPath:    model.DestPath(p.destDir, item.Title, p.format),
	}

	if info, err := os.Stat(d.DestPath); err == nil && info.Size() > 0 {
		d.Action = Skip
		return d
	}

	entry, found := p.store.Lookup(fp)
	if !found {
		entry, found = p.store.LookupByTitle(item.Title, p.format)
	}
	if !found {
		d.Action = Download
		return d
	}

	info, err := os.Stat(entry.FilePath)
	if err != nil || info.Size() == 0 {
		// Stale entry: the archived file vanished out-of-band. Drop it
		// from the index (persisted at the next flush) and re-download.
		p.store.Discard(entry.Fingerprint)
		p.logger.Debug("stale archive entry, falling back to download",
			slog.String("fingerprint", string(entry.Fingerprint)),
			slog.String("file_path", entry.FilePath))
		d.Action = Download
		return d
	}

	d.SourcePath = entry.FilePath
	d.Title = entry.Title
	d.DestPath = model.DestPath(p.destDir, entry.Title, p.format)

	if d.SourcePath == d.DestPath {
		d.Action = Skip
		return d
	}

	same, err := SameVolume(entry.FilePath, p.destDir)
	if err != nil {
		p.logger.Debug("volume probe failed, using byte copy",
			slog.String("source", entry.FilePath),
			slog.Any("error", err))
	}
	if same {
		d.Action = HardlinkCopy
	} else {
		d.Action = FallbackCopy
	}
	return d
}
