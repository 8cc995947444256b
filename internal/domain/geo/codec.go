package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrMalformedLocation = errors.New("malformed location")

type locationText struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

// EncodeLocation flattens l into the text blob stored in the "location" field.
// DecodeLocation(EncodeLocation(l)) == l for every valid l with a UTF-8 address.
func EncodeLocation(l Location) (string, error) {
	if !l.Valid() {
		return "", fmt.Errorf("%w: coordinates out of range", ErrMalformedLocation)
	}
	if !utf8.ValidString(l.Address) {
		return "", fmt.Errorf("%w: address is not valid UTF-8", ErrMalformedLocation)
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	return string(b), nil
}

// DecodeLocation parses a blob written by EncodeLocation.
func DecodeLocation(s string) (Location, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()

	var t locationText
	if err := dec.Decode(&t); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	if dec.More() {
		return Location{}, fmt.Errorf("%w: trailing data", ErrMalformedLocation)
	}
	if t.Lat == nil || t.Lng == nil {
		return Location{}, fmt.Errorf("%w: lat and lng are required", ErrMalformedLocation)
	}
	l := Location{Lat: *t.Lat, Lng: *t.Lng, Address: t.Address}
	if !l.Valid() {
		return Location{}, fmt.Errorf("%w: coordinates out of range", ErrMalformedLocation)
	}
	return l, nil
}

// DecodeLocationField accepts whatever Firestore returned for "location":
// the text blob, or the older nested map {lat, lng, address}.
func DecodeLocationField(v interface{}) (Location, error) {
	switch x := v.(type) {
	case string:
		return DecodeLocation(x)
	case map[string]interface{}:
		lat, okLat := number(x["lat"])
		lng, okLng := number(x["lng"])
		if !okLat || !okLng {
			return Location{}, fmt.Errorf("%w: lat and lng are required", ErrMalformedLocation)
		}
		addr, _ := x["address"].(string)
		l := Location{Lat: lat, Lng: lng, Address: addr}
		if !l.Valid() {
			return Location{}, fmt.Errorf("%w: coordinates out of range", ErrMalformedLocation)
		}
		return l, nil
	case nil:
		return Location{}, fmt.Errorf("%w: missing", ErrMalformedLocation)
	default:
		return Location{}, fmt.Errorf("%w: unexpected type %T", ErrMalformedLocation, v)
	}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
