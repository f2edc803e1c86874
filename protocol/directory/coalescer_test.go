package directory

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/stretchr/testify/require"
)

const testKey = protocol.PublicKey(
	"05a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2")

func TestCoalescerSharesInflightResult(t *testing.T) {
	c := newCoalescer()
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func() ([]protocol.DeviceLink, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return []protocol.DeviceLink{{MasterKey: testKey}}, nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var first, second []protocol.DeviceLink
	go func() {
		defer wg.Done()
		first, _ = c.do(testKey, fn)
	}()
	go func() {
		defer wg.Done()
		<-started
		second, _ = c.do(testKey, fn)
	}()

	// release the fetch once the joiner had a chance to register
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls),
		"a joining caller must not invoke the factory")
	require.Equal(t, first, second)
}

func TestCoalescerRemovesEntryOnCompletion(t *testing.T) {
	c := newCoalescer()
	calls := 0
	fn := func() ([]protocol.DeviceLink, error) {
		calls++
		return nil, errors.New("boom")
	}

	_, err := c.do(testKey, fn)
	require.Error(t, err)
	_, err = c.do(testKey, fn)
	require.Error(t, err)
	require.Equal(t, 2, calls, "sequential calls must each run: the entry is removed on completion")

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Empty(t, c.pending)
}

func TestCoalescerKeysAreIndependent(t *testing.T) {
	c := newCoalescer()
	otherKey := protocol.PublicKey(
		"05ffb2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2")

	blocked := make(chan struct{})
	go c.do(testKey, func() ([]protocol.DeviceLink, error) {
		<-blocked
		return nil, nil
	})

	// a different key must not wait on testKey's fetch
	done := make(chan struct{})
	go func() {
		c.do(otherKey, func() ([]protocol.DeviceLink, error) { return nil, nil })
		close(done)
	}()
	<-done
	close(blocked)
}
