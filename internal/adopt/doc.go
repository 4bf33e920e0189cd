// Package adopt pulls pre-existing media files into the archive.
package adopt
