package store

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is one stored metric value. Scraped cells are numeric most of the
// time, but the source occasionally renders placeholders ("-", "N/A"); those
// are kept verbatim as raw values so bad input stays inspectable and
// correctable instead of disappearing.
type Value struct {
	num     float64
	raw     string
	numeric bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{num: f, numeric: true} }

// Raw returns a non-numeric Value holding the original text.
func Raw(s string) Value { return Value{raw: s} }

// Coerce parses s as a float and falls back to a raw Value when it cannot.
func Coerce(s string) Value {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return Number(f)
	}
	return Raw(s)
}

// Float returns the numeric value and whether the Value is numeric at all.
func (v Value) Float() (float64, bool) { return v.num, v.numeric }

// IsNumeric reports whether the Value coerced cleanly.
func (v Value) IsNumeric() bool { return v.numeric }

// String renders the value the way it would be shown to a user.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.raw
}

// MarshalJSON writes numbers as JSON numbers and raw values as strings, so a
// persisted store reads back with the same tags.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.raw)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = Raw(s)
	return nil
}
