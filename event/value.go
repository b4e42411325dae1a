// Package event turns raw tabular rows into normalized event records and groups
// them into per-event units for triple generation.
package event

import "encoding/json"

// Value is an optional cell value. The zero Value is absent.
type Value struct {
	s  string
	ok bool
}

// Absent is the explicit marker for a missing cell.
var Absent = Value{}

// Present wraps a string that is known to exist. Use Normalize for raw cells.
func Present(s string) Value {
	return Value{s: s, ok: true}
}

// naTokens are the cell spellings read as missing, the same set pandas.read_csv
// treats as NaN by default.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// Normalize converts a raw cell into a Value, mapping empty cells and NA tokens
// to Absent.
func Normalize(raw string) Value {
	if IsMissing(raw) {
		return Absent
	}
	return Present(raw)
}

// IsMissing reports whether a raw cell is read as a missing value.
func IsMissing(raw string) bool {
	_, ok := naTokens[raw]
	return ok
}

// Get returns the string and whether it is present.
func (v Value) Get() (string, bool) {
	return v.s, v.ok
}

// IsPresent reports whether the value exists.
func (v Value) IsPresent() bool {
	return v.ok
}

// Or returns the value, or def when absent.
func (v Value) Or(def string) string {
	if !v.ok {
		return def
	}
	return v.s
}

// String returns the value or "" when absent.
func (v Value) String() string {
	return v.s
}

// Equals reports whether v is present and equal to s.
func (v Value) Equals(s string) bool {
	return v.ok && v.s == s
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (v Value) Ptr() *string {
	if !v.ok {
		return nil
	}
	s := v.s
	return &s
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON decodes null as Absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Absent
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Present(s)
	return nil
}
