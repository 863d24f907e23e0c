package extract

import (
    "bytes"
    "encoding/json"
    "fmt"
    "strings"
)

// ScoreRow is one leaf metric observation from a detail row. Weight, Value
// and Total stay string-encoded as displayed; only Value and Total have had
// decimal commas rewritten to periods.
type ScoreRow struct {
    Code   string `json:"code"`
    Name   string `json:"name"`
    Weight string `json:"weight"`
    Value  string `json:"value"`
    Total  string `json:"total"`
}

// SubtotalEntry is a named intermediate rollup from an italic total row.
type SubtotalEntry struct {
    Label string `json:"label"`
    Value string `json:"value"`
}

const (
    // grandTotalKey is the key carrying the document-wide final score.
    grandTotalKey = "TOTAL ALL SCORE"
    // subtotalSuffix marks the key holding a section's rollup entries.
    subtotalSuffix = " (subtotal)"
)

// SectionMap is the extractor's complete output: section captions mapped to
// their detail rows, "<caption> (subtotal)" keys mapped to rollup entries,
// and an optional scalar grand total. Key order is the order of first
// appearance in the document, and the JSON encoding reproduces the legacy
// dump shape exactly.
type SectionMap struct {
    keys      []string
    rows      map[string][]ScoreRow
    subtotals map[string][]SubtotalEntry
    grand     string
    hasGrand  bool
}

func newSectionMap() *SectionMap {
    return &SectionMap{
        rows:      make(map[string][]ScoreRow),
        subtotals: make(map[string][]SubtotalEntry),
    }
}

// Keys returns every key in encounter order, including subtotal keys and the
// grand total key.
func (m *SectionMap) Keys() []string {
    return append([]string(nil), m.keys...)
}

// Sections returns the primary section captions in encounter order.
func (m *SectionMap) Sections() []string {
    out := make([]string, 0, len(m.rows))
    for _, k := range m.keys {
        if _, ok := m.rows[k]; ok {
            out = append(out, k)
        }
    }
    return out
}

// Rows returns the detail rows recorded under a section caption.
func (m *SectionMap) Rows(section string) []ScoreRow {
    return append([]ScoreRow(nil), m.rows[section]...)
}

// Subtotals returns the rollup entries recorded while section was current.
func (m *SectionMap) Subtotals(section string) []SubtotalEntry {
    return append([]SubtotalEntry(nil), m.subtotals[section+subtotalSuffix]...)
}

// GrandTotal returns the document-wide final score as displayed, unmodified,
// and whether a grand-total row was present at all.
func (m *SectionMap) GrandTotal() (string, bool) {
    return m.grand, m.hasGrand
}

// openSection makes caption the current section. Sections are keyed by
// caption text: a repeated caption reuses the existing entry and later rows
// append to the same sequence.
func (m *SectionMap) openSection(caption string) {
    if _, ok := m.rows[caption]; ok {
        return
    }
    m.keys = append(m.keys, caption)
    m.rows[caption] = []ScoreRow{}
}

func (m *SectionMap) addRow(section string, row ScoreRow) {
    m.rows[section] = append(m.rows[section], row)
}

func (m *SectionMap) addSubtotal(section string, e SubtotalEntry) {
    key := section + subtotalSuffix
    if _, ok := m.subtotals[key]; !ok {
        m.keys = append(m.keys, key)
    }
    m.subtotals[key] = append(m.subtotals[key], e)
}

func (m *SectionMap) setGrandTotal(value string) {
    if !m.hasGrand {
        m.keys = append(m.keys, grandTotalKey)
        m.hasGrand = true
    }
    m.grand = value
}

// MarshalJSON writes keys in encounter order so dumps stay byte-comparable
// across runs. Non-ASCII caption text is emitted unescaped.
func (m *SectionMap) MarshalJSON() ([]byte, error) {
    var buf bytes.Buffer
    buf.WriteByte('{')
    for i, k := range m.keys {
        if i > 0 {
            buf.WriteByte(',')
        }
        if err := appendJSON(&buf, k); err != nil {
            return nil, err
        }
        buf.WriteByte(':')
        var err error
        switch {
        case m.hasGrand && k == grandTotalKey:
            err = appendJSON(&buf, m.grand)
        default:
            if entries, ok := m.subtotals[k]; ok {
                err = appendJSON(&buf, entries)
            } else {
                err = appendJSON(&buf, m.rows[k])
            }
        }
        if err != nil {
            return nil, err
        }
    }
    buf.WriteByte('}')
    return buf.Bytes(), nil
}

// UnmarshalJSON reads a previously dumped section map back, restoring key
// order from the document. The value shape is decided by the key: the grand
// total key holds a scalar, "(subtotal)" keys hold rollup entries, and
// everything else holds detail rows.
func (m *SectionMap) UnmarshalJSON(data []byte) error {
    dec := json.NewDecoder(bytes.NewReader(data))
    tok, err := dec.Token()
    if err != nil {
        return err
    }
    if d, ok := tok.(json.Delim); !ok || d != '{' {
        return fmt.Errorf("section map: expected object, got %v", tok)
    }
    *m = *newSectionMap()
    for dec.More() {
        tok, err := dec.Token()
        if err != nil {
            return err
        }
        key, ok := tok.(string)
        if !ok {
            return fmt.Errorf("section map: expected key, got %v", tok)
        }
        switch {
        case key == grandTotalKey:
            var v string
            if err := dec.Decode(&v); err != nil {
                return fmt.Errorf("section map: grand total: %w", err)
            }
            m.setGrandTotal(v)
        case strings.HasSuffix(key, subtotalSuffix):
            var entries []SubtotalEntry
            if err := dec.Decode(&entries); err != nil {
                return fmt.Errorf("section map: subtotals %q: %w", key, err)
            }
            m.keys = append(m.keys, key)
            m.subtotals[key] = entries
        default:
            var rows []ScoreRow
            if err := dec.Decode(&rows); err != nil {
                return fmt.Errorf("section map: rows %q: %w", key, err)
            }
            m.keys = append(m.keys, key)
            if rows == nil {
                rows = []ScoreRow{}
            }
            m.rows[key] = rows
        }
    }
    // consume closing brace
    if _, err := dec.Token(); err != nil {
        return err
    }
    return nil
}

// appendJSON encodes v without HTML escaping so captions keep their original
// characters, trimming the newline json.Encoder appends.
func appendJSON(buf *bytes.Buffer, v any) error {
    enc := json.NewEncoder(buf)
    enc.SetEscapeHTML(false)
    if err := enc.Encode(v); err != nil {
        return err
    }
    buf.Truncate(buf.Len() - 1)
    return nil
}
