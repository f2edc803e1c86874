package protocol

import (
	"encoding/hex"
	"strings"

	"github.com/Hu-Wenqiang/session-android-service/crypto/sign"
)

// PublicKey is a hex-encoded, prefixed identity key as it
// appears in directory records and message envelopes.
type PublicKey string

// HexLength is the length of a well-formed PublicKey string.
const HexLength = 2*sign.PublicKeySize + len(sign.KeyPrefix)

// Valid reports whether pk is structurally a public identity key:
// prefixed, of the right length and hex-decodable. It says nothing
// about whether the key is registered anywhere.
func (pk PublicKey) Valid() bool {
	s := string(pk)
	if len(s) != HexLength || !strings.HasPrefix(s, sign.KeyPrefix) {
		return false
	}
	_, err := hex.DecodeString(s[len(sign.KeyPrefix):])
	return err == nil
}

// SigningKey returns the ed25519 verification key embedded in pk.
func (pk PublicKey) SigningKey() (sign.PublicKey, error) {
	return sign.DecodeHex(string(pk))
}

// FilterValidKeys drops structurally malformed keys and
// duplicates, preserving order.
func FilterValidKeys(keys []PublicKey) []PublicKey {
	seen := make(map[PublicKey]bool, len(keys))
	valid := make([]PublicKey, 0, len(keys))
	for _, k := range keys {
		if !k.Valid() || seen[k] {
			continue
		}
		seen[k] = true
		valid = append(valid, k)
	}
	return valid
}
