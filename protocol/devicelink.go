// Implements the device-link entity and its two-signature
// verification. A link is an authorization between a primary
// and a secondary device identity: the secondary signs a
// linking request, the primary signs the grant.

package protocol

import "encoding/json"

// A DeviceLink associates a secondary device identity with a
// primary one. A link is only authoritative once both signatures
// verify; unverified links are discarded by all callers and are
// never persisted.
type DeviceLink struct {
	MasterKey PublicKey
	SlaveKey  PublicKey

	// RequestSignature is the secondary device's signature over
	// the key pair, produced when it requests linking.
	RequestSignature []byte

	// AuthorizationSignature is the primary device's signature
	// over the key pair, granting the linkage.
	AuthorizationSignature []byte
}

// A DeviceLinkRecord is the wire form of a DeviceLink inside a
// devicemapping annotation. Signature bytes travel base64-encoded.
type DeviceLinkRecord struct {
	PrimaryDevicePubKey   string `json:"primaryDevicePubKey"`
	SecondaryDevicePubKey string `json:"secondaryDevicePubKey"`
	RequestSignature      []byte `json:"requestSignature,omitempty"`
	GrantSignature        []byte `json:"grantSignature,omitempty"`
}

// signedData is the canonical byte tuple both parties sign.
func (dl *DeviceLink) signedData() []byte {
	return []byte(string(dl.MasterKey) + string(dl.SlaveKey))
}

// Verify checks that both signatures are present and that each
// verifies under the expected signer key: the request signature
// under the secondary key, the grant under the primary key.
func (dl *DeviceLink) Verify() bool {
	if len(dl.RequestSignature) == 0 || len(dl.AuthorizationSignature) == 0 {
		return false
	}
	slaveKey, err := dl.SlaveKey.SigningKey()
	if err != nil {
		return false
	}
	masterKey, err := dl.MasterKey.SigningKey()
	if err != nil {
		return false
	}
	data := dl.signedData()
	return slaveKey.Verify(data, dl.RequestSignature) &&
		masterKey.Verify(data, dl.AuthorizationSignature)
}

// SignAsSlave populates the request signature for a link the
// secondary device is asking for.
func (dl *DeviceLink) SignAsSlave(key interface{ Sign([]byte) []byte }) {
	dl.RequestSignature = key.Sign(dl.signedData())
}

// SignAsMaster populates the grant signature.
func (dl *DeviceLink) SignAsMaster(key interface{ Sign([]byte) []byte }) {
	dl.AuthorizationSignature = key.Sign(dl.signedData())
}

// Wire converts dl to its annotation record form.
func (dl *DeviceLink) Wire() DeviceLinkRecord {
	return DeviceLinkRecord{
		PrimaryDevicePubKey:   string(dl.MasterKey),
		SecondaryDevicePubKey: string(dl.SlaveKey),
		RequestSignature:      dl.RequestSignature,
		GrantSignature:        dl.AuthorizationSignature,
	}
}

// Link converts a wire record back into a DeviceLink. The result
// still has to pass Verify before it may be used.
func (r *DeviceLinkRecord) Link() DeviceLink {
	return DeviceLink{
		MasterKey:              PublicKey(r.PrimaryDevicePubKey),
		SlaveKey:               PublicKey(r.SecondaryDevicePubKey),
		RequestSignature:       r.RequestSignature,
		AuthorizationSignature: r.GrantSignature,
	}
}

// Equal reports whether two links join the same pair of devices.
// Signatures are not compared; a re-signed link is the same link.
func (dl *DeviceLink) Equal(other *DeviceLink) bool {
	return dl.MasterKey == other.MasterKey && dl.SlaveKey == other.SlaveKey
}

// ContainsLink reports whether links holds a link joining the
// same devices as dl.
func ContainsLink(links []DeviceLink, dl DeviceLink) bool {
	for i := range links {
		if links[i].Equal(&dl) {
			return true
		}
	}
	return false
}

// MarshalJSON renders dl in its wire form.
func (dl DeviceLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(dl.Wire())
}

// UnmarshalJSON parses the wire form of a link.
func (dl *DeviceLink) UnmarshalJSON(data []byte) error {
	var r DeviceLinkRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*dl = r.Link()
	return nil
}
