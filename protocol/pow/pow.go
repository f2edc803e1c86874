// Package pow computes the hashcash-style proof of work a message
// must carry before the network relays it. The difficulty target
// scales with payload size and TTL: bigger or longer-lived
// messages cost proportionally more to stamp, so flooding the
// network is computationally expensive while ephemeral traffic
// stays cheap.
package pow

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/benbjohnson/clock"
	"golang.org/x/crypto/sha3"
)

const (
	// NonceSize is the byte length of the nonce searched for.
	NonceSize = 8

	// NonceTrials is the base difficulty factor.
	NonceTrials = 10

	// checkInterval is how many nonce candidates are tried
	// between cancellation checks.
	checkInterval = 4096
)

// CalcTarget derives the difficulty target for a payload of the
// given size living for ttl milliseconds. A candidate digest,
// read as a big-endian integer over its first 8 bytes, must be at
// or below the target. Raising TTL or payload size never raises
// the target.
func CalcTarget(ttl int64, payloadLen int) uint64 {
	x1 := uint64(payloadLen + NonceSize)
	x2 := (uint64(ttl/1000) * x1) / (1 << 16)
	trials := NonceTrials * (x1 + x2)
	return math.MaxUint64 / trials
}

// searchData is the byte string candidates are derived from:
// timestamp, TTL, destination key and base64 payload, in that
// order. Any relay can rebuild it from the stamped message alone.
func searchData(timestamp protocol.Timestamp, ttl int64,
	destination protocol.PublicKey, data []byte) []byte {
	s := strconv.FormatInt(int64(timestamp), 10) +
		strconv.FormatInt(ttl, 10) +
		string(destination) +
		base64.StdEncoding.EncodeToString(data)
	return []byte(s)
}

func candidateValue(nonce uint64, innerHash []byte) uint64 {
	buf := make([]byte, NonceSize+len(innerHash))
	binary.BigEndian.PutUint64(buf[:NonceSize], nonce)
	copy(buf[NonceSize:], innerHash)
	digest := sha3.Sum512(buf)
	return binary.BigEndian.Uint64(digest[:NonceSize])
}

// CheckNonce verifies a stamp the way a relay would: it rebuilds
// the search data from the message fields and checks the nonce's
// digest against the derived target.
func CheckNonce(msg *protocol.Message) bool {
	if !msg.Stamped() || len(msg.Nonce) != NonceSize {
		return false
	}
	inner := sha3.Sum512(searchData(msg.Timestamp, msg.TTL, msg.Destination, msg.Data))
	nonce := binary.BigEndian.Uint64(msg.Nonce)
	return candidateValue(nonce, inner[:]) <= CalcTarget(msg.TTL, len(msg.Data))
}

// An Engine stamps messages with a valid proof of work. The
// search runs on the calling goroutine for Stamp and off it for
// StampAsync; both stop promptly on context cancellation.
type Engine struct {
	clock clock.Clock
}

// NewEngine builds an engine. A nil clk falls back to the wall
// clock.
func NewEngine(clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	return &Engine{clock: clk}
}

// A Result is the outcome of an asynchronous stamp computation.
type Result struct {
	Message *protocol.Message
	Err     error
}

// Stamp searches for a nonce satisfying the message's difficulty
// target and returns a stamped copy; destination, payload and TTL
// are unchanged. The search space is unbounded, so the only
// failure is cancellation, reported as ErrPoWCalculationFailed.
func (e *Engine) Stamp(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	timestamp := protocol.Timestamp(e.clock.Now().UnixMilli())
	target := CalcTarget(msg.TTL, len(msg.Data))
	inner := sha3.Sum512(searchData(timestamp, msg.TTL, msg.Destination, msg.Data))

	for nonce := uint64(0); ; {
		for i := 0; i < checkInterval; i++ {
			if candidateValue(nonce, inner[:]) <= target {
				stamped := *msg
				stamped.Timestamp = timestamp
				stamped.Nonce = make([]byte, NonceSize)
				binary.BigEndian.PutUint64(stamped.Nonce, nonce)
				return &stamped, nil
			}
			nonce++
		}
		select {
		case <-ctx.Done():
			return nil, protocol.ErrPoWCalculationFailed
		default:
		}
	}
}

// StampAsync runs Stamp off the calling goroutine and delivers
// the outcome on the returned channel.
func (e *Engine) StampAsync(ctx context.Context, msg *protocol.Message) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		stamped, err := e.Stamp(ctx, msg)
		out <- Result{Message: stamped, Err: err}
	}()
	return out
}
