package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// Settings holds all configuration options.
type Settings struct {
	// Paths
	DownloadsPath string `json:"downloads_path"`
	ArchivePath   string `json:"archive_path"`

	// Sync behavior
	Format               string `json:"format"` // mp3, mkv, mp4, native
	MaxConcurrentCopies  int    `json:"max_concurrent_copies"`
	MaxConcurrentFetches int    `json:"max_concurrent_fetches"`

	// RemoteBaseURL resolves bare collection references. Full URLs are
	// always used as given.
	RemoteBaseURL string `json:"remote_base_url"`

	// Download engine
	FetchTimeoutSeconds   int     `json:"fetch_timeout_seconds"`
	DownloadMaxRetries    int     `json:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent float64 `json:"download_retry_exponent"`
	UserAgent             string  `json:"user_agent"`

	// Playlist generation
	CreatePlaylist bool `json:"create_playlist"`
	M3UExtended    bool `json:"m3u_extended"`

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // console, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath: filepath.Join(homeDir, "Music", "playsync"),
		ArchivePath:   DefaultArchivePath(),

		Format:               "mp3",
		MaxConcurrentCopies:  4,
		MaxConcurrentFetches: 3,

		FetchTimeoutSeconds:   300,
		DownloadMaxRetries:    7,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,
		UserAgent:             "playsync",

		CreatePlaylist: true,
		M3UExtended:    true,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// DefaultArchivePath returns the platform-appropriate location of the
// persisted archive: %APPDATA%\playsync on Windows, $XDG_DATA_HOME/playsync
// (falling back to ~/.local/share/playsync) elsewhere.
func DefaultArchivePath() string {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, "playsync", "archive.json")
}

// Load reads settings from a JSON file. A missing file is not an error:
// defaults are returned so first runs work without any setup.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
