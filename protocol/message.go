// Defines the message envelope handed to the relay tier. A
// message must carry a proof-of-work stamp (timestamp + nonce)
// before the network will accept it.

package protocol

// A Message is a payload addressed to a contact's identity key.
// Timestamp and Nonce are zero until a proof-of-work computation
// succeeds; an unstamped message must not be submitted for relay.
type Message struct {
	Destination PublicKey
	Data        []byte
	TTL         int64 // milliseconds
	IsPing      bool

	// populated by a successful proof-of-work computation
	Timestamp Timestamp
	Nonce     []byte
}

// Stamped reports whether m carries a complete proof-of-work stamp.
func (m *Message) Stamped() bool {
	return m.Timestamp != 0 && len(m.Nonce) > 0
}
