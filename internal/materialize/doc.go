// Package materialize produces local destination files from archived
// sources: a hardlink when source and destination share a volume, a
// size-verified byte copy otherwise.
//
// Failures are graded, not flattened: a vanished source reports
// ErrSourceVanished so the orchestrator can downgrade the item to a
// download, a hardlink failure silently degrades to a copy, and only a
// failed copy surfaces as a hard error. An integrity mismatch removes the
// partial destination before reporting, so no half-written file ever
// survives a call.
package materialize
