// Defines constants representing the classes of errors
// the device-link sync and message admission paths may
// report to their callers.

package protocol

type ErrorCode int

const (
	ReqSuccess ErrorCode = iota + 10

	// ErrInvalidPublicKey indicates a structurally malformed
	// public key. Such keys are filtered out of read requests
	// silently and never reach the directory.
	ErrInvalidPublicKey

	// ErrDirectoryFetchFailed indicates a transport or server
	// failure while fetching device mappings. The key's sync
	// timestamp is left untouched so the next call retries.
	ErrDirectoryFetchFailed

	// ErrParsingFailed indicates a malformed directory response
	// for a key. The key's sync timestamp is still stamped to
	// avoid hammering the directory with requests that will
	// keep failing to parse.
	ErrParsingFailed

	// ErrPoWCalculationFailed indicates the proof of work search
	// was cancelled before a valid nonce was found.
	ErrPoWCalculationFailed

	// ErrDirectoryWriteFailed indicates the device-mapping update
	// exhausted its retry budget. Local persistence is not
	// mutated when this is returned.
	ErrDirectoryWriteFailed

	ErrMalformedMessage
)

var errorMessages = map[ErrorCode]string{
	ReqSuccess:              "[session] Success",
	ErrInvalidPublicKey:     "[session] Invalid public key",
	ErrDirectoryFetchFailed: "[session] Couldn't fetch device mappings from the directory",
	ErrParsingFailed:        "[session] Couldn't parse device mappings",
	ErrPoWCalculationFailed: "[session] Proof of work calculation failed",
	ErrDirectoryWriteFailed: "[session] Couldn't update device mappings on the directory",
	ErrMalformedMessage:     "[session] Malformed message",
}

func (e ErrorCode) Error() string {
	if m, ok := errorMessages[e]; ok {
		return m
	}
	return "[session] Unknown error"
}
