// Package domain provides the record model and repository contracts
// consumed by the table and form controllers.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is an opaque mapping from field name to scalar or nested-record
// value, as returned by the repository for a given entity. Joined parent
// rows appear as nested Records (e.g. a product row embeds its category
// under "categoria").
//
// Numeric values are kept as json.Number or decimal.Decimal to preserve
// precision; the default float64 decoding loses cents on money fields.
type Record map[string]any

// DecodeRecord parses a JSON object into a Record with UseNumber()
// so numeric precision survives the round trip.
func DecodeRecord(data []byte) (Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var rec Record
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Get resolves a dotted field path ("categoria.nombre" walks into the
// nested categoria record). Returns nil when any step is missing.
func (r Record) Get(path string) any {
	if r == nil {
		return nil
	}
	parts := strings.Split(path, ".")
	var cur any = map[string]any(r)
	for _, part := range parts {
		m, ok := toMap(cur)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

// Set stores a value under a top-level field name.
func (r Record) Set(field string, value any) {
	r[field] = value
}

// GetString returns the value at path rendered as a string, or "" when
// absent. Non-string scalars are formatted the obvious way.
func (r Record) GetString(path string) string {
	v := r.Get(path)
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		if s {
			return "true"
		}
		return "false"
	case decimal.Decimal:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}

// GetInt returns an int64 value, handling json.Number correctly.
func (r Record) GetInt(path string) int64 {
	switch v := r.Get(path).(type) {
	case json.Number:
		i, _ := v.Int64()
		return i
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case decimal.Decimal:
		return v.IntPart()
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return d.IntPart()
	}
	return 0
}

// GetDecimal returns a decimal value, defaulting to zero. Used for
// prices and totals where float64 arithmetic is not acceptable.
func (r Record) GetDecimal(path string) decimal.Decimal {
	switch v := r.Get(path).(type) {
	case decimal.Decimal:
		return v
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}

// GetBool returns a boolean value; absent fields read as false.
func (r Record) GetBool(path string) bool {
	switch v := r.Get(path).(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "t"
	}
	return false
}

// Visible reports the soft-delete flag. A record without the field is
// treated as visible, matching default-listing semantics.
func (r Record) Visible() bool {
	v := r.Get("visible")
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return !ok || b
}

// Flat returns a copy of the record with nested records removed.
// Used when building write payloads, since joined parent fields are
// read-only projections and must never be written back.
func (r Record) Flat() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if _, nested := toMap(v); nested {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone performs a shallow copy (nested records are shared).
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
