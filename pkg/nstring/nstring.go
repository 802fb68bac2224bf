package nstring

import (
	"database/sql/driver"
	"encoding/json"
)

// NString represents a nullable string column.
// It can be used as a scan destination and can be marshalled to JSON.
type NString struct {
	value   string
	isValid bool // false when the column is null
}

func New(value string) NString {
	return NString{value, true}
}

// Null returns the invalid zero value; spelled out for readability at call sites.
func Null() NString {
	return NString{}
}

func (ns NString) String() string {
	return ns.value
}

func (ns NString) Valid() bool {
	return ns.isValid
}

func (ns NString) MarshalJSON() ([]byte, error) {
	if ns.isValid {
		return json.Marshal(ns.value)
	}
	return []byte("null"), nil
}

func (ns *NString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ns = NString{}
		return nil
	}
	var value string
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}
	*ns = NString{value, true}
	return nil
}

// Scan implements the Scanner interface.
func (ns *NString) Scan(value any) error {
	ns.value, ns.isValid = value.(string)
	return nil
}

// Value implements the driver Valuer interface, so null columns stay null.
func (ns NString) Value() (driver.Value, error) {
	if ns.isValid {
		return driver.Value(ns.value), nil
	}
	return nil, nil
}
