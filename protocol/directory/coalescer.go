package directory

import (
	"sync"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

// inflight is one outstanding fetch. Callers joining after the
// first block on done and observe the same result.
type inflight struct {
	done  chan struct{}
	links []protocol.DeviceLink
	err   error
}

// coalescer deduplicates concurrent fetches for the same key so at
// most one is in flight per key at a time. An entry is removed
// unconditionally when its fetch completes, so the table reflects
// only currently-outstanding work.
type coalescer struct {
	mu      sync.Mutex
	pending map[protocol.PublicKey]*inflight
}

func newCoalescer() *coalescer {
	return &coalescer{pending: make(map[protocol.PublicKey]*inflight)}
}

// do returns the result of fn for key, joining an already
// outstanding call when one exists. Registration and the
// completion-removal are each a single map mutation under the
// lock, so callers racing on the same key either all join the
// first fetch or start exactly one new one.
func (c *coalescer) do(key protocol.PublicKey,
	fn func() ([]protocol.DeviceLink, error)) ([]protocol.DeviceLink, error) {
	c.mu.Lock()
	if f, ok := c.pending[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.links, f.err
	}
	f := &inflight{done: make(chan struct{})}
	c.pending[key] = f
	c.mu.Unlock()

	f.links, f.err = fn()

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
	close(f.done)

	return f.links, f.err
}
