// Package sign wraps the ed25519 signature scheme used for
// device-link request and grant signatures.
package sign

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/ed25519"
)

const (
	PrivateKeySize = 64
	PublicKeySize  = 32

	// KeyPrefix is prepended to the hex encoding of every public
	// identity key on the wire.
	KeyPrefix = "05"
)

type PrivateKey ed25519.PrivateKey
type PublicKey ed25519.PublicKey

func GenerateKey() (PrivateKey, error) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	return PrivateKey(sk), err
}

func (key PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(key), message)
}

func (key PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}

func (pk PublicKey) Verify(message, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pk), message, sig)
}

// Hex returns the prefixed hex encoding of pk as it appears
// in directory records and message envelopes.
func (pk PublicKey) Hex() string {
	return KeyPrefix + hex.EncodeToString(pk)
}

// DecodeHex parses a prefixed or bare hex-encoded public key.
func DecodeHex(s string) (PublicKey, error) {
	if len(s) == 2*PublicKeySize+len(KeyPrefix) && strings.HasPrefix(s, KeyPrefix) {
		s = s[len(KeyPrefix):]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != PublicKeySize {
		return nil, errors.New("[session] Bad public key length")
	}
	return PublicKey(raw), nil
}
