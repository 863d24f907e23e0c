// Package store keeps the flat metric-code → value table downstream analysis
// reads from, seeded from canonical defaults and filled in from crawled score
// tables or persisted snapshots.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/rahadiankp/sintametrics/internal/extract"
)

// Store is process-local mutable state with no locking of its own; callers
// running it from multiple goroutines must serialize access.
type Store struct {
	values map[string]Value
}

// New returns a store populated with the canonical defaults.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Get returns the value under code coerced to float64. Missing codes and raw
// (non-numeric) values fall back to def; Get never fails.
func (s *Store) Get(code string, def float64) float64 {
	v, ok := s.values[code]
	if !ok {
		return def
	}
	f, ok := v.Float()
	if !ok {
		return def
	}
	return f
}

// SetFloat stores a numeric value under code.
func (s *Store) SetFloat(code string, f float64) {
	s.values[code] = Number(f)
}

// SetString coerces raw to a number and stores it. Input that does not parse
// is kept verbatim and flagged with a warning; it is not an error and later
// writes or validation can still correct it.
func (s *Store) SetString(code, raw string) {
	v := Coerce(raw)
	if !v.IsNumeric() {
		log.Warn().Str("code", code).Str("value", raw).Msg("metric value is not numeric; stored as-is")
	}
	s.values[code] = v
}

// Reset replaces the whole store with a fresh copy of the canonical
// defaults. The store is never left partially populated.
func (s *Store) Reset() {
	s.values = make(map[string]Value, len(canonicalDefaults))
	for code, f := range canonicalDefaults {
		s.values[code] = Number(f)
	}
}

// Validate reports every canonical field missing from the store and every
// stored value that is not a non-negative number. An empty map means the
// store is fully valid.
func (s *Store) Validate() map[string]string {
	issues := make(map[string]string)
	for code := range canonicalDefaults {
		if _, ok := s.values[code]; !ok {
			issues[code] = fmt.Sprintf("missing field: %s", code)
		}
	}
	for code, v := range s.values {
		f, ok := v.Float()
		if !ok {
			issues[code] = fmt.Sprintf("value must be numeric: %s = %s", code, v.String())
			continue
		}
		if f < 0 {
			issues[code] = fmt.Sprintf("value must be non-negative: %s = %s", code, v.String())
		}
	}
	return issues
}

// Snapshot copies the whole store out for backup.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for code, v := range s.values {
		out[code] = v
	}
	return out
}

// Restore replaces the whole store with snap.
func (s *Store) Restore(snap map[string]Value) {
	s.values = make(map[string]Value, len(snap))
	for code, v := range snap {
		s.values[code] = v
	}
}

// Merge overlays data onto the store: existing codes are retained unless
// data overwrites them, incoming codes are added.
func (s *Store) Merge(data map[string]Value) {
	for code, v := range data {
		s.values[code] = v
	}
}

// All returns a copy of the current contents.
func (s *Store) All() map[string]Value {
	return s.Snapshot()
}

// LoadSections copies every detail row of a crawled section map into the
// store keyed by metric code. This is the bridge between the extractor's
// nested output and the flat table.
func (s *Store) LoadSections(m *extract.SectionMap) {
	for _, section := range m.Sections() {
		for _, row := range m.Rows(section) {
			s.SetString(row.Code, row.Value)
		}
	}
}

// SaveFile writes the store as a flat JSON object, 2-space indented with
// non-ASCII kept unescaped, matching the legacy snapshot format.
func (s *Store) SaveFile(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.values); err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// LoadFile merges a previously saved JSON snapshot into the store. Existing
// codes survive unless the file overwrites them.
func (s *Store) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	var data map[string]Value
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("decode store: %w", err)
	}
	s.Merge(data)
	return nil
}
