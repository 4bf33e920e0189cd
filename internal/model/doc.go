// Package model defines the core data structures shared across playsync.
//
// # PlaylistItem
//
// PlaylistItem is the lightweight item descriptor produced by a flat
// collection scan. It deliberately carries no heavy per-item metadata;
// resolving formats and codecs is deferred to the download engine, and only
// for items that turn out to be missing locally.
//
// # Format
//
// Format identifies the requested output container (mp3, mkv, mp4, native).
// Format is part of an item's archive fingerprint: the same remote item in
// two formats is two distinct logical items.
//
// # File naming
//
// DestFileName and DestPath compute local filenames from item titles,
// sanitizing characters that are invalid on common filesystems:
//
//	model.DestPath("/music/Mix", "Song: Part 1", model.FormatMP3)
//	// "/music/Mix/Song_ Part 1.mp3"
package model
