// Package playlist renders M3U playlists for synced collections.
package playlist
