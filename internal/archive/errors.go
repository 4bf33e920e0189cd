package archive

import "errors"

var (
	// ErrCorruptArchive indicates the persisted archive could not be parsed.
	// Open still returns a usable store with an empty index so downloads
	// remain possible; callers decide whether to warn or abort.
	ErrCorruptArchive = errors.New("archive: persisted form is corrupt")

	// ErrArchiveBusy indicates another session holds the archive lock.
	// A concurrent writer would corrupt the store, so this is fatal for
	// the run; retry after the other session finishes.
	ErrArchiveBusy = errors.New("archive: locked by another session")

	// ErrPersistence indicates a flush or backup could not be written.
	// The in-memory index stays valid; the session continues degraded.
	ErrPersistence = errors.New("archive: persistence failure")

	// ErrNoArchive indicates an operation needs a persisted archive file
	// that does not exist yet.
	ErrNoArchive = errors.New("archive: no persisted archive")
)
