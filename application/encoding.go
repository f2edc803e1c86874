// Defines methods/functions to encode/decode the devicemapping
// annotation payloads exchanged with the directory service.
// Currently this module supports JSON marshal/unmarshal only.

package application

import (
	"encoding/json"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

// A DeviceMappingValue is the value of a devicemapping annotation:
// whether the acting identity is a primary device, plus its full
// current authorization list.
type DeviceMappingValue struct {
	IsPrimary      bool                        `json:"isPrimary"`
	Authorisations []protocol.DeviceLinkRecord `json:"authorisations"`
}

// An Annotation is one typed entry of a directory profile record.
// A nil Value clears the annotation on a partial update.
type Annotation struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// A ProfileRecord is one user entry of a directory response.
// Username carries the hex public key.
type ProfileRecord struct {
	Username    string       `json:"username"`
	Annotations []Annotation `json:"annotations"`
}

// MarshalDeviceMappingUpdate returns the JSON body of a partial
// profile update replacing the devicemapping annotation. A nil
// value clears all links.
func MarshalDeviceMappingUpdate(value *DeviceMappingValue) ([]byte, error) {
	annotation := struct {
		Type  string              `json:"type"`
		Value *DeviceMappingValue `json:"value"`
	}{
		Type:  protocol.DeviceMappingType,
		Value: value,
	}
	return json.Marshal(struct {
		Annotations []interface{} `json:"annotations"`
	}{
		Annotations: []interface{}{annotation},
	})
}

// NewDeviceMappingValue builds the annotation value for the given
// authorization list. isPrimary tells whether the acting identity
// is the primary device of the set.
func NewDeviceMappingValue(isPrimary bool, links []protocol.DeviceLink) *DeviceMappingValue {
	records := make([]protocol.DeviceLinkRecord, 0, len(links))
	for i := range links {
		records = append(records, links[i].Wire())
	}
	return &DeviceMappingValue{
		IsPrimary:      isPrimary,
		Authorisations: records,
	}
}

// DeviceMapping extracts the devicemapping annotation value of a
// profile record. It returns (nil, nil) when the record carries no
// such annotation, and an error when the annotation is present but
// can't be parsed.
func (p *ProfileRecord) DeviceMapping() (*DeviceMappingValue, error) {
	for _, a := range p.Annotations {
		if a.Type != protocol.DeviceMappingType {
			continue
		}
		value := new(DeviceMappingValue)
		if err := json.Unmarshal(a.Value, value); err != nil {
			return nil, protocol.ErrParsingFailed
		}
		return value, nil
	}
	return nil, nil
}

// UnmarshalProfileResponse parses a directory user-query response
// of the form {"data": [record...]}.
func UnmarshalProfileResponse(body []byte) ([]ProfileRecord, error) {
	var res struct {
		Data []ProfileRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}
