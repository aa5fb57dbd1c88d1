package table

import (
	"encoding/json"
	"strconv"
	"time"
)

// Value represents a typed cell with an explicit missing state
type Value struct {
	Type         ValueType  `json:"type"`
	StringVal    *string    `json:"string_val,omitempty"`
	NumericVal   *float64   `json:"numeric_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
}

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeMissing   ValueType = "missing"
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeTimestamp ValueType = "timestamp"
)

// NewStringValue creates a string value; the empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: &t}
}

// Missing creates a missing value
func Missing() Value {
	return Value{Type: ValueTypeMissing}
}

// OptionalNumber turns a guarded computation into a value.
func OptionalNumber(n float64, ok bool) Value {
	if !ok {
		return Missing()
	}
	return NewNumericValue(n)
}

// IsMissing reports whether the cell holds no usable value.
func (v Value) IsMissing() bool {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal == nil
	case ValueTypeNumeric:
		return v.NumericVal == nil
	case ValueTypeTimestamp:
		return v.TimestampVal == nil
	}
	return true
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// IsString returns true if the value represents a valid string
func (v Value) IsString() bool {
	return v.Type == ValueTypeString && v.StringVal != nil
}

// IsTimestamp returns true if the value represents a valid timestamp
func (v Value) IsTimestamp() bool {
	return v.Type == ValueTypeTimestamp && v.TimestampVal != nil
}

// Float returns the number and whether the value was numeric.
func (v Value) Float() (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return *v.NumericVal, true
}

// Time returns the timestamp and whether the value was one.
func (v Value) Time() (time.Time, bool) {
	if !v.IsTimestamp() {
		return time.Time{}, false
	}
	return *v.TimestampVal, true
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	f, _ := v.Float()
	return f
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.StringVal != nil {
		return *v.StringVal
	}
	return ""
}

// String renders the cell the way it is written to delimited files.
// Missing cells render as the empty string.
func (v Value) String() string {
	switch {
	case v.IsString():
		return *v.StringVal
	case v.IsNumeric():
		return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
	case v.IsTimestamp():
		t := *v.TimestampVal
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	}
	return ""
}

// Key is a grouping key in which every missing cell compares equal.
func (v Value) Key() string {
	if v.IsMissing() {
		return "\x00missing"
	}
	return string(v.Type) + ":" + v.String()
}

// Equal compares two cells by type and content.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// MarshalJSON encodes missing as null and other cells as plain JSON scalars.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsString():
		return json.Marshal(*v.StringVal)
	case v.IsNumeric():
		return json.Marshal(*v.NumericVal)
	case v.IsTimestamp():
		return json.Marshal(v.String())
	}
	return []byte("null"), nil
}
