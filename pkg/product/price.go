package product

import (
	"encoding/json"
	"errors"
)

// Price is an opaque JSON value. Whatever the client sent (a string, a number,
// null) is stored and echoed back verbatim; no arithmetic is ever done on it.
type Price struct {
	raw string
}

// TextPrice wraps a form value as a JSON string price.
func TextPrice(s string) Price {
	b, _ := json.Marshal(s)
	return Price{raw: string(b)}
}

// RawPrice wraps already-encoded JSON, as read back from a storage backend.
// Empty input yields the null price.
func RawPrice(b []byte) (Price, error) {
	if len(b) == 0 {
		return Price{}, nil
	}
	if !json.Valid(b) {
		return Price{}, errors.New("price: invalid JSON")
	}
	return Price{raw: string(b)}, nil
}

// Present reports whether a value, JSON null included, was supplied.
func (p Price) Present() bool {
	return p.raw != ""
}

// IsNull reports whether no value was supplied.
func (p Price) IsNull() bool {
	return p.raw == "" || p.raw == "null"
}

// JSON returns the encoded value, "null" when unset.
func (p Price) JSON() string {
	if p.raw == "" {
		return "null"
	}
	return p.raw
}

// String renders the price for display: strings unquoted, anything else as JSON text.
func (p Price) String() string {
	if p.IsNull() {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(p.raw), &s); err == nil {
		return s
	}
	return p.raw
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.JSON()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(b []byte) error {
	v, err := RawPrice(b)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
