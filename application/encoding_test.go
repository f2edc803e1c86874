package application

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Hu-Wenqiang/session-android-service/protocol"
)

func TestMarshalDeviceMappingUpdate(t *testing.T) {
	value := NewDeviceMappingValue(true, []protocol.DeviceLink{
		{
			MasterKey:              "05aa",
			SlaveKey:               "05bb",
			RequestSignature:       []byte{1},
			AuthorizationSignature: []byte{2},
		},
	})
	buf, err := MarshalDeviceMappingUpdate(value)
	if err != nil {
		t.Fatal(err)
	}
	s := string(buf)
	if !strings.Contains(s, protocol.DeviceMappingType) {
		t.Error("Update body is missing the annotation type")
	}
	if !strings.Contains(s, "authorisations") {
		t.Error("Update body is missing the authorization list")
	}
}

func TestMarshalDeviceMappingClear(t *testing.T) {
	buf, err := MarshalDeviceMappingUpdate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), `"value":null`) {
		t.Error("Clearing must send a null annotation value, got", string(buf))
	}
}

func TestProfileRecordDeviceMapping(t *testing.T) {
	body := []byte(`{"data": [{
		"username": "05aa",
		"annotations": [{
			"type": "` + protocol.DeviceMappingType + `",
			"value": {"isPrimary": true, "authorisations": [
				{"primaryDevicePubKey": "05aa", "secondaryDevicePubKey": "05bb"}
			]}
		}]
	}]}`)
	records, err := UnmarshalProfileResponse(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatal("Expect one record, got", len(records))
	}
	mapping, err := records[0].DeviceMapping()
	if err != nil {
		t.Fatal(err)
	}
	if mapping == nil || !mapping.IsPrimary || len(mapping.Authorisations) != 1 {
		t.Fatal("Lost the devicemapping value:", mapping)
	}
}

func TestProfileRecordWithoutMapping(t *testing.T) {
	p := ProfileRecord{Username: "05aa"}
	mapping, err := p.DeviceMapping()
	if mapping != nil || err != nil {
		t.Fatal("Expect (nil, nil) for a record with no devicemapping annotation")
	}
}

func TestProfileRecordMalformedMapping(t *testing.T) {
	p := ProfileRecord{
		Username: "05aa",
		Annotations: []Annotation{
			{Type: protocol.DeviceMappingType, Value: json.RawMessage(`"not an object"`)},
		},
	}
	if _, err := p.DeviceMapping(); err != protocol.ErrParsingFailed {
		t.Fatal("Expect ErrParsingFailed, got", err)
	}
}
