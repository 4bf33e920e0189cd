// Package ioutils provides small file system helpers shared by the archive
// store and the sync orchestrator.
package ioutils

import (
	"io"
	"os"
)

// CopyFile copies a file from source to destination.
//
// The destination is created with mode 0644, or truncated if it already
// exists. The close error of the destination is returned so short writes on
// full disks are not silently dropped.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// EnsureDir creates a directory and all parent directories if they don't
// exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
