// Package roster reads the institution list that drives a crawl.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Institution is one roster row: enough identity to fetch the profile page
// and to label the result.
type Institution struct {
	KodePT  string
	Nama    string
	Klaster string
	SintaID string
}

// Required roster columns, matched against the CSV header row.
const (
	colKodePT  = "Kode PT"
	colNama    = "Nama Institusi"
	colSintaID = "Sinta ID Link"
	colKlaster = "Klaster"
)

// Load reads the roster from a CSV file.
func Load(path string) ([]Institution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses roster CSV from r. Column positions come from the header row,
// so column order does not matter; all four required columns must be present.
// Rows without a Sinta ID cannot be fetched and are skipped with a warning.
func Read(r io.Reader) ([]Institution, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet exports often prepend a BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colKodePT, colNama, colSintaID, colKlaster} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("roster: missing column %q", required)
		}
	}

	var out []Institution
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read roster line %d: %w", line, err)
		}
		inst := Institution{
			KodePT:  strings.TrimSpace(record[idx[colKodePT]]),
			Nama:    strings.TrimSpace(record[idx[colNama]]),
			Klaster: strings.TrimSpace(record[idx[colKlaster]]),
			SintaID: strings.TrimSpace(record[idx[colSintaID]]),
		}
		if inst.SintaID == "" {
			log.Warn().Int("line", line).Str("institution", inst.Nama).Msg("roster row has no Sinta ID; skipping")
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}
