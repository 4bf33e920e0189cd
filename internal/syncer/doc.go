// Package syncer coordinates a two-phase sync session: reconcile local
// state against the archive, then fetch whatever is still missing.
package syncer
