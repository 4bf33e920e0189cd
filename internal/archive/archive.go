package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	ioutils "playsync/internal/io"
	"playsync/internal/logging"
	"playsync/internal/model"
)

// Entry records one previously materialized item. Entries are owned by the
// Store and always passed by value; callers never share a reference into
// the index.
type Entry struct {
	Fingerprint Fingerprint  `json:"fingerprint"`
	Title       string       `json:"title"`
	Format      model.Format `json:"format"`
	FilePath    string       `json:"file_path"`
	FileSize    int64        `json:"file_size"`
	RecordedAt  time.Time    `json:"recorded_at"`
}

// Stats summarizes the archive contents.
type Stats struct {
	Entries    int
	TotalBytes int64
	ByFormat   map[model.Format]int
}

// Store is the persistent mapping from fingerprint to materialization
// record. The full index lives in memory for the session; the persisted
// form is a JSON file replaced atomically on flush.
//
// A Store is safe for concurrent use within one process. It is NOT safe for
// concurrent use across processes: Open guards against that with an
// advisory lock and fails with ErrArchiveBusy when another session holds it.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.RWMutex
	entries map[Fingerprint]Entry
	dirty   bool
}

// Open loads the archive at path into memory and acquires the session lock.
//
// An empty path yields an in-memory-only store: no lock, and Flush/Backup
// are no-ops. This is the deterministic-test configuration.
//
// A missing file is a fresh start. An unparseable file returns a usable
// store with an empty index together with an error wrapping
// ErrCorruptArchive: the caller should warn and continue, since downloads
// must still be possible with a damaged archive.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "archive")

	s := &Store{
		path:    path,
		logger:  logger,
		entries: make(map[Fingerprint]Entry),
	}

	if path == "" {
		return s, nil
	}

	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	s.lock = flock.New(path + ".lock")
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire archive lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrArchiveBusy, s.lock.Path())
	}

	if err := s.load(); err != nil {
		if errors.Is(err, ErrCorruptArchive) {
			s.entries = make(map[Fingerprint]Entry)
			return s, err
		}
		_ = s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// Close flushes pending changes and releases the session lock.
func (s *Store) Close() error {
	flushErr := s.Flush()
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("release archive lock: %w", err)
		}
	}
	return flushErr
}

// Lookup returns the entry for a fingerprint. It only consults the
// in-memory index and never touches the filesystem.
func (s *Store) Lookup(fp Fingerprint) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fp]
	return entry, ok
}

// LookupByTitle searches for an entry of the given format whose sanitized
// title matches the given one. It is the fallback when the exact
// fingerprint misses, e.g. for entries adopted from disk where no remote ID
// was known. Stale candidates found along the way are dropped from the
// index (persisted on the next flush).
func (s *Store) LookupByTitle(title string, f model.Format) (Entry, bool) {
	want := strings.ToLower(model.SanitizeFileName(title))
	if want == "" {
		return Entry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for fp, entry := range s.entries {
		if entry.Format != f {
			continue
		}
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(s.entries, fp)
			s.dirty = true
			continue
		}
		if strings.ToLower(model.SanitizeFileName(entry.Title)) == want {
			return entry, true
		}
	}
	return Entry{}, false
}

// Record inserts or overwrites the entry for its fingerprint. Last write
// wins. A zero RecordedAt is stamped with the current time.
func (s *Store) Record(entry Entry) {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Fingerprint] = entry
	s.dirty = true
}

// Discard removes an entry from the in-memory index without flushing.
// Used for lazy pruning of stale entries discovered during planning; the
// removal is persisted at the next checkpoint flush.
func (s *Store) Discard(fp Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[fp]; ok {
		delete(s.entries, fp)
		s.dirty = true
	}
}

// Flush atomically persists the full index: the new form is written to a
// temporary file which then replaces the canonical file, so a crash at any
// point leaves the previous persisted form intact. A clean index is a
// no-op. Failures wrap ErrPersistence and leave the in-memory index valid.
func (s *Store) Flush() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.dirty = false
	return nil
}

// Backup copies the current persisted form to a timestamp-suffixed side
// file next to the canonical store and returns the backup path. The
// canonical file is never mutated. Returns ErrNoArchive when nothing has
// been persisted yet.
func (s *Store) Backup() (string, error) {
	if s.path == "" {
		return "", nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoArchive
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	backupPath := fmt.Sprintf("%s.%s.bak", s.path, time.Now().Format("20060102-150405"))
	if err := ioutils.CopyFile(s.path, backupPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("archive backed up", slog.String("path", backupPath))
	return backupPath, nil
}

// Clear removes every entry the selector matches and flushes immediately.
// Returns the number of entries removed. Clearing is irreversible except
// via a prior Backup.
func (s *Store) Clear(sel Selector) (int, error) {
	s.mu.Lock()

	removed := 0
	for fp, entry := range s.entries {
		if sel.Matches(entry) {
			delete(s.entries, fp)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	if removed > 0 {
		if err := s.Flush(); err != nil {
			return removed, err
		}
		s.logger.Info("archive entries cleared", slog.Int("removed", removed))
	}
	return removed, nil
}

// Prune removes entries whose file no longer exists on disk and flushes if
// anything was removed. Run opportunistically; never on the lookup path.
func (s *Store) Prune() (int, error) {
	s.mu.Lock()

	removed := 0
	for fp, entry := range s.entries {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(s.entries, fp)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	if removed > 0 {
		if err := s.Flush(); err != nil {
			return removed, err
		}
		s.logger.Info("stale archive entries pruned", slog.Int("removed", removed))
	}
	return removed, nil
}

// List returns all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RecordedAt.After(entries[j].RecordedAt)
	})
	return entries
}

// Len returns the number of entries in the index.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats summarizes entry count, total recorded bytes, and per-format counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{ByFormat: make(map[model.Format]int)}
	for _, entry := range s.entries {
		st.Entries++
		st.TotalBytes += entry.FileSize
		st.ByFormat[entry.Format]++
	}
	return st
}

// load reads the persisted form into the index.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read archive file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	s.entries = make(map[Fingerprint]Entry, len(entries))
	for _, entry := range entries {
		if entry.Fingerprint != "" {
			s.entries[entry.Fingerprint] = entry
		}
	}

	s.logger.Debug("archive loaded",
		slog.Int("entry_count", len(s.entries)),
		slog.String("path", s.path))
	return nil
}

// save writes the index to disk atomically. Caller holds s.mu.
func (s *Store) save() error {
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}

	// Deterministic output: newest first, fingerprint as tie-break.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].RecordedAt.Equal(entries[j].RecordedAt) {
			return entries[i].RecordedAt.After(entries[j].RecordedAt)
		}
		return entries[i].Fingerprint < entries[j].Fingerprint
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
