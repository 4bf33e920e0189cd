package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"playsync/internal/model"
)

// Fingerprint is the stable identifier of one logical item in one requested
// format. Computing it is pure: the same (remote ID, format) pair always
// yields the same fingerprint.
type Fingerprint string

// Key builds the fingerprint for a remote item in a given format.
//
//	Key("abc", model.FormatMP3) // "abc#mp3"
//
// The same remote ID requested as mp3 and as mkv produces two distinct
// fingerprints; the archive tracks them independently.
func Key(remoteID string, f model.Format) Fingerprint {
	id := strings.ToLower(strings.TrimSpace(remoteID))
	return Fingerprint(id + "#" + string(f))
}

// LocalKey builds a fingerprint for a file adopted from disk, where no
// remote ID is known. The key is derived from the absolute path so repeated
// adoption scans are stable and collision-free across directories.
func LocalKey(absPath string, f model.Format) Fingerprint {
	sum := sha256.Sum256([]byte(absPath))
	return Fingerprint("local:" + hex.EncodeToString(sum[:])[:12] + "#" + string(f))
}

// IsLocal reports whether the fingerprint was synthesized by an adoption
// scan rather than recorded from a remote item.
func (fp Fingerprint) IsLocal() bool {
	return strings.HasPrefix(string(fp), "local:")
}
