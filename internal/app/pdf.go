package app

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// writeSummaryPDF renders a plain crawl summary: one block per institution
// with its cluster, grand total, and per-section row counts. This replaces
// the legacy on-screen result view and is intentionally simple; it does not
// attempt full tabular layout.
func writeSummaryPDF(results []InstitutionMetrics, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "SINTA metrics crawl summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d institutions with extracted score tables", len(results)), "", "L", false)
	pdf.Ln(3)

	for _, r := range results {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s (%s)", r.Nama, r.KodePT), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, fmt.Sprintf("Cluster: %s    Sinta ID: %s", r.Klaster, r.SintaID), "", "L", false)
		if total, ok := r.Metrics.GrandTotal(); ok {
			pdf.MultiCell(0, 5, "Total all score: "+total, "", "L", false)
		}
		for _, section := range r.Metrics.Sections() {
			pdf.MultiCell(0, 5, fmt.Sprintf("%s: %d metrics", section, len(r.Metrics.Rows(section))), "", "L", false)
		}
		pdf.Ln(4)
	}

	return pdf.OutputFileAndClose(outPath)
}
