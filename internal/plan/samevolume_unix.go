//go:build unix

package plan

import "golang.org/x/sys/unix"

// SameVolume reports whether two paths live on the same filesystem, by
// comparing device IDs. A hardlink can only span a single volume.
func SameVolume(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, err
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, err
	}
	return sa.Dev == sb.Dev, nil
}
