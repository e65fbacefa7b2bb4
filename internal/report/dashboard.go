// Package report renders the statistics dashboard as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/phpdave11/gofpdf"

	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/service"
)

// WriteDashboard renders d as an A4 PDF into w.
func WriteDashboard(w io.Writer, d service.Dashboard) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("Case Ledger - Statistics Dashboard", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Case Ledger - Statistics Dashboard", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, "Generated at: "+d.GeneratedAt.Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Case source: %s | Officer source: %s", d.CaseSource, d.DirectorySource), "", 1, "L", false, 0, "")
	if d.CaseSource == service.SourceFixtures {
		pdf.SetTextColor(150, 90, 0)
		pdf.MultiCell(0, 5, "Record store was unreachable; figures are computed from bundled sample data.", "", "L", false)
	}
	pdf.Ln(2)

	g := d.Global
	sectionTitle(pdf, "1. Overview")
	kv(pdf, "Total cases", fmt.Sprintf("%d", g.Total))
	kv(pdf, "Active", fmt.Sprintf("%d", g.Active))
	kv(pdf, "Pending", fmt.Sprintf("%d", g.Pending))
	kv(pdf, "Under investigation", fmt.Sprintf("%d", g.UnderInvestigation))
	kv(pdf, "Resolved", fmt.Sprintf("%d", g.Resolved))
	kv(pdf, "Urgent", fmt.Sprintf("%d", g.Urgent))
	kv(pdf, "Completion rate", fmt.Sprintf("%.1f%%", g.CompletionRate*100))
	kv(pdf, "Avg. resolution", fmt.Sprintf("%.1f days", g.AvgResolutionDays))
	kv(pdf, "By priority", fmt.Sprintf("High %d / Medium %d / Low %d",
		g.ByPriority[model.PriorityHigh], g.ByPriority[model.PriorityMedium], g.ByPriority[model.PriorityLow]))
	pdf.Ln(2)

	sectionTitle(pdf, "2. Officer Workload")
	widths := []float64{70, 22, 22, 22, 46}
	header := []string{"Officer", "Active", "Resolved", "Total", "Load"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	if len(d.Workload.Officers) == 0 {
		pdf.CellFormat(0, 6, "(no officers)", "1", 1, "L", false, 0, "")
	}
	for _, row := range d.Workload.Officers {
		cells := []string{
			safeText(row.Officer.Name),
			fmt.Sprintf("%d", row.Active),
			fmt.Sprintf("%d", row.Resolved),
			fmt.Sprintf("%d", row.Total),
			string(row.Load),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if d.Workload.Unattributed > 0 {
		pdf.Ln(2)
		pdf.SetTextColor(150, 90, 0)
		pdf.MultiCell(0, 5, fmt.Sprintf("%d case(s) could not be attributed to any officer.", d.Workload.Unattributed), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render dashboard pdf: %w", err)
	}
	return pdf.Output(w)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 196, pdf.GetY())
	pdf.Ln(2)
}

func kv(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(48, 5.5, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5.5, safeText(value), "", "L", false)
}

// safeText keeps core-font output printable: control characters become spaces and
// anything outside ASCII becomes '?'.
func safeText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return ' '
		case r > unicode.MaxASCII:
			return '?'
		}
		return r
	}, s))
}
