package adopt

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"playsync/internal/archive"
	"playsync/internal/logging"
	"playsync/internal/model"
)

// Result summarizes one adoption scan.
type Result struct {
	// Scanned is the number of files whose extension matched the format.
	Scanned int

	// Adopted is the number of new archive entries created.
	Adopted int

	// Known is the number of matching files that were already recorded.
	Known int
}

// Adopter records pre-existing media files into the archive so later sync
// sessions can materialize from them instead of re-downloading. Adopted
// files have no remote identity; they get synthetic path-derived
// fingerprints and are matched by title at plan time.
type Adopter struct {
	store  *archive.Store
	format model.Format
	logger *slog.Logger
}

// New creates an Adopter for one format.
func New(store *archive.Store, format model.Format, logger *slog.Logger) *Adopter {
	return &Adopter{
		store:  store,
		format: format,
		logger: logging.WithComponent(logger, "adopt"),
	}
}

// Adopt walks dir recursively and records every file whose extension
// belongs to the format's extension class. Files already in the archive
// (by their path-derived fingerprint) are left alone. The archive is
// flushed once at the end.
func (a *Adopter) Adopt(dir string) (Result, error) {
	var res Result

	allowed := make(map[string]bool)
	for _, ext := range a.format.Extensions() {
		allowed[ext] = true
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		res.Scanned++

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		fp := archive.LocalKey(abs, a.format)
		if _, found := a.store.Lookup(fp); found {
			res.Known++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		a.store.Record(archive.Entry{
			Fingerprint: fp,
			Title:       a.titleOf(abs),
			Format:      a.format,
			FilePath:    abs,
			FileSize:    info.Size(),
		})
		res.Adopted++
		a.logger.Debug("adopted file", slog.String("path", abs))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("scanning %s: %w", dir, err)
	}

	if err := a.store.Flush(); err != nil {
		return res, err
	}

	a.logger.Info("adoption scan finished",
		slog.String("dir", dir),
		slog.Int("scanned", res.Scanned),
		slog.Int("adopted", res.Adopted),
		slog.Int("known", res.Known))
	return res, nil
}

// titleOf resolves the display title for an adopted file: the ID3 title
// frame for MP3s that carry one, the file stem otherwise.
func (a *Adopter) titleOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if title := readID3Title(path); title != "" {
			return title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readID3Title returns the TIT2 frame value, or "" when the file has no
// parseable tag.
func readID3Title(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
	if err != nil {
		return ""
	}
	defer tag.Close()
	return strings.TrimSpace(tag.Title())
}
