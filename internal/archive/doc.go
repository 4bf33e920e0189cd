// Package archive implements the persistent download archive: a mapping
// from item fingerprint to a record of where and how that item was
// previously materialized.
//
// # Model
//
// The full index is loaded into memory once per session and held there;
// lookups never touch the filesystem. Mutations mark the index dirty and
// Flush persists the whole index atomically (write temp file, rename over
// the canonical file), so the persisted form is never observed
// half-written even when a flush is interrupted.
//
// # Storage
//
// The persisted form is a JSON array of entries, human-readable and easy
// to inspect or repair by hand. A corrupt file degrades to an empty index
// rather than aborting the session. Backups are full timestamped copies
// next to the canonical file.
//
// # Sessions
//
// The store is single-writer-per-session. Open takes an advisory file lock
// (gofrs/flock); a second session against the same archive fails fast with
// ErrArchiveBusy instead of silently corrupting state.
//
//	store, err := archive.Open(path, logger)
//	if errors.Is(err, archive.ErrCorruptArchive) {
//	    // warn; store is usable with an empty index
//	} else if err != nil {
//	    return err
//	}
//	defer store.Close()
package archive
