package directory

import "github.com/Hu-Wenqiang/session-android-service/protocol"

// An UpdateResult is the per-key outcome of a directory fetch:
// either a verified device-link set or a failure. A success with
// an empty set means the directory confirmed the key has no links.
type UpdateResult struct {
	Key   protocol.PublicKey
	Links []protocol.DeviceLink
	Err   error
}

// Failed reports whether the fetch for this key did not produce
// an authoritative answer.
func (r *UpdateResult) Failed() bool {
	return r.Err != nil
}
