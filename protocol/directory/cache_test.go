package directory

import (
	"sync"
	"testing"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

func TestSyncCacheMissingEntryIsExpired(t *testing.T) {
	c := newSyncCache()
	if !c.expired(0, testKey) {
		t.Fatal("A key with no sync record must be treated as expired")
	}
}

func TestSyncCacheBoundary(t *testing.T) {
	c := newSyncCache()
	c.stamp(testKey, 1000)

	if c.expired(1000+protocol.RefreshIntervalMs, testKey) {
		t.Error("Exactly the refresh interval is still fresh")
	}
	if !c.expired(1000+protocol.RefreshIntervalMs+1, testKey) {
		t.Error("One past the refresh interval must be expired")
	}
}

func TestSyncCacheRestamp(t *testing.T) {
	c := newSyncCache()
	c.stamp(testKey, 1000)
	c.stamp(testKey, 50000)
	if c.expired(60000, testKey) {
		t.Error("The latest stamp must win")
	}
}

func TestSyncCacheConcurrentStamps(t *testing.T) {
	c := newSyncCache()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.stamp(testKey, protocol.Timestamp(i))
			c.expired(protocol.Timestamp(i), testKey)
		}(i)
	}
	wg.Wait()
}
