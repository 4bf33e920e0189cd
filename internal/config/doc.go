// Package config provides configuration management for playsync.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Platform-appropriate default archive location
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/playsync
//	// Archive at $XDG_DATA_HOME/playsync/archive.json
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	// Uses defaults if the file doesn't exist.
//
// # Configuration Options
//
// Settings includes options for:
//   - Download and archive paths
//   - Requested output format
//   - Concurrency limits for local copies and remote fetches
//   - Engine retry behavior
//   - Playlist generation
//   - Logging level and format
package config
