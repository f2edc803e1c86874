package protocol

// Timestamp is a Unix timestamp in milliseconds.
type Timestamp int64

const (
	// RefreshIntervalMs is the minimum interval between two
	// directory fetches for the same public key.
	RefreshIntervalMs = 20 * 1000

	// MaxRetryCount bounds the retries of a device-mapping
	// update submitted to the directory.
	MaxRetryCount = 8

	// MaxPayloadSize is the largest message payload the relay
	// tier accepts. Callers enforce this before stamping.
	MaxPayloadSize = 10 * 1000 * 1000

	// DeviceMappingType is the annotation type under which the
	// directory stores a user's device authorization list.
	DeviceMappingType = "network.loki.messenger.devicemapping"
)
