package squirrel

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Ext is the fixed extension for cache entry files.
const Ext = ".cache"

// locator derives the on-disk location for a cache key. Derivations are
// memoized per instance; in session mode the memo also records exactly the
// set of locations this instance has touched, which cleanup later walks.
type locator struct {
	dir       string
	sessionID string // folded into the hash input when non-empty
	locations map[string]string
}

func newLocator(dir, sessionID string) *locator {
	return &locator{
		dir:       dir,
		sessionID: sessionID,
		locations: make(map[string]string),
	}
}

// locate returns the entry path for key. The filename is the lowercase hex
// form of the first 16 bytes of the SHA-256 digest of the effective key, so
// arbitrary key strings map to flat, fixed-length names. Collisions are an
// accepted cache-semantics risk.
func (l *locator) locate(key string) string {
	effective := key + l.sessionID
	if path, ok := l.locations[effective]; ok {
		return path
	}

	digest := sha256.Sum256([]byte(effective))
	path := filepath.Join(l.dir, hex.EncodeToString(digest[:16])+Ext)
	l.locations[effective] = path
	return path
}

// created returns every location this instance has derived so far.
func (l *locator) created() []string {
	paths := make([]string, 0, len(l.locations))
	for _, path := range l.locations {
		paths = append(paths, path)
	}
	return paths
}

// reset clears the tracked locations after cleanup has run.
func (l *locator) reset() {
	l.locations = make(map[string]string)
}
