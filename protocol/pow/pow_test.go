package pow

import (
	"context"
	"testing"
	"time"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

const testDestination = protocol.PublicKey(
	"05a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2")

func testEngine() *Engine {
	mock := clock.NewMock()
	mock.Set(time.Unix(1610000000, 0))
	return NewEngine(mock)
}

func testMessage() *protocol.Message {
	return &protocol.Message{
		Destination: testDestination,
		Data:        []byte("hello from a linked device"),
		TTL:         60 * 1000,
	}
}

func TestStampProducesVerifiableNonce(t *testing.T) {
	e := testEngine()
	msg := testMessage()

	stamped, err := e.Stamp(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, stamped.Stamped())
	require.True(t, CheckNonce(stamped))

	// the original is untouched
	require.False(t, msg.Stamped())
	require.Equal(t, msg.Data, stamped.Data)
	require.Equal(t, msg.TTL, stamped.TTL)
	require.Equal(t, msg.Destination, stamped.Destination)
}

func TestStampIsDeterministicallyVerifiable(t *testing.T) {
	e := testEngine()
	stamped, err := e.Stamp(context.Background(), testMessage())
	require.NoError(t, err)

	// verification is pure: same fields, same verdict
	for i := 0; i < 3; i++ {
		require.True(t, CheckNonce(stamped))
	}
}

func TestCheckNonceRejectsTampering(t *testing.T) {
	e := testEngine()
	stamped, err := e.Stamp(context.Background(), testMessage())
	require.NoError(t, err)

	tamperedData := *stamped
	tamperedData.Data = append([]byte{}, stamped.Data...)
	tamperedData.Data[0]++
	require.False(t, CheckNonce(&tamperedData))

	tamperedNonce := *stamped
	tamperedNonce.Nonce = append([]byte{}, stamped.Nonce...)
	tamperedNonce.Nonce[NonceSize-1]++
	require.False(t, CheckNonce(&tamperedNonce))

	unstamped := *stamped
	unstamped.Nonce = nil
	require.False(t, CheckNonce(&unstamped))
}

func TestTargetMonotonicInTTL(t *testing.T) {
	payloadLen := 512
	prev := CalcTarget(0, payloadLen)
	for ttl := int64(1000); ttl <= 4*24*60*60*1000; ttl *= 4 {
		target := CalcTarget(ttl, payloadLen)
		require.LessOrEqual(t, target, prev,
			"raising TTL must never lower the difficulty")
		prev = target
	}
}

func TestTargetMonotonicInPayloadSize(t *testing.T) {
	ttl := int64(24 * 60 * 60 * 1000)
	prev := CalcTarget(ttl, 0)
	for size := 1; size <= protocol.MaxPayloadSize; size *= 10 {
		target := CalcTarget(ttl, size)
		require.LessOrEqual(t, target, prev,
			"larger payloads must never get cheaper")
		prev = target
	}
}

func TestStampCancellation(t *testing.T) {
	e := testEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// parameters hard enough that the first batch can't succeed
	msg := &protocol.Message{
		Destination: testDestination,
		Data:        make([]byte, 1000*1000),
		TTL:         4 * 24 * 60 * 60 * 1000,
	}
	_, err := e.Stamp(ctx, msg)
	require.Equal(t, protocol.ErrPoWCalculationFailed, err)
}

func TestStampAsync(t *testing.T) {
	e := testEngine()
	res := <-e.StampAsync(context.Background(), testMessage())
	require.NoError(t, res.Err)
	require.True(t, CheckNonce(res.Message))
}

func TestStampAsyncCancellation(t *testing.T) {
	e := testEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg := &protocol.Message{
		Destination: testDestination,
		Data:        make([]byte, 1000*1000),
		TTL:         4 * 24 * 60 * 60 * 1000,
	}
	res := <-e.StampAsync(ctx, msg)
	require.Equal(t, protocol.ErrPoWCalculationFailed, res.Err)
	require.Nil(t, res.Message)
}
