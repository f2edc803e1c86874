package directory

import (
	"sync"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

// syncCache tracks, per public key, the timestamp of the last
// successful-or-confirmed-absent directory sync. A missing entry
// means the key has never synced (or was forced stale) and is
// always treated as expired.
type syncCache struct {
	mu       sync.Mutex
	lastSync map[protocol.PublicKey]protocol.Timestamp
}

func newSyncCache() *syncCache {
	return &syncCache{lastSync: make(map[protocol.PublicKey]protocol.Timestamp)}
}

// expired reports whether key needs a directory refresh at now.
func (c *syncCache) expired(now protocol.Timestamp, key protocol.PublicKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.lastSync[key]
	return !ok || now-last > protocol.RefreshIntervalMs
}

// stamp records a completed sync for key. It is only called after
// a fetch completes, never speculatively.
func (c *syncCache) stamp(key protocol.PublicKey, now protocol.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSync[key] = now
}
