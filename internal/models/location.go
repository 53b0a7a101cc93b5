package models

import (
	"encoding/json"
	"time"
)

// LocationRecord is one persisted GPS observation. Records are written once and never updated.
type LocationRecord struct {
	ID         string    `json:"_id" bson:"_id" dynamodbav:"id"`
	DeviceName string    `json:"deviceName" bson:"deviceName" dynamodbav:"deviceName"`
	Latitude   float64   `json:"latitude" bson:"latitude" dynamodbav:"latitude"`
	Longitude  float64   `json:"longitude" bson:"longitude" dynamodbav:"longitude"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp" dynamodbav:"timestamp"`
}

// LocationRequest is a reading as submitted by a device.
// Fields stay untyped so a string latitude or a null device name can be told apart from a missing one.
type LocationRequest struct {
	DeviceName any `json:"deviceName"`
	Latitude   any `json:"latitude"`
	Longitude  any `json:"longitude"`
}

// UnmarshalJSON reads only the exact keys; encoding/json would otherwise match DEVICENAME or Latitude.
func (r *LocationRequest) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	var req LocationRequest
	if req.DeviceName, err = field(fields, "deviceName"); err != nil {
		return err
	}
	if req.Latitude, err = field(fields, "latitude"); err != nil {
		return err
	}
	if req.Longitude, err = field(fields, "longitude"); err != nil {
		return err
	}

	*r = req
	return nil
}

// NMEARequest carries a raw NMEA sentence instead of decoded coordinates.
// Sentence is untyped like the LocationRequest fields so a number is reported against the sentence field.
type NMEARequest struct {
	DeviceName any `json:"deviceName"`
	Sentence   any `json:"sentence"`
}

func (r *NMEARequest) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	var req NMEARequest
	if req.DeviceName, err = field(fields, "deviceName"); err != nil {
		return err
	}
	if req.Sentence, err = field(fields, "sentence"); err != nil {
		return err
	}

	*r = req
	return nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// field returns nil for an absent key, the same value an explicit null decodes to.
func field(fields map[string]json.RawMessage, key string) (any, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
