package pdf

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"leadcrm/internal/models"
)

// Generator renders lead listings; an interface so handlers can be tested with a stub.
type Generator interface {
	LeadsReport(w io.Writer, data LeadsReportData) error
}

type LeadsReportData struct {
	OwnerName   string
	GeneratedAt time.Time
	Total       int
	Page        int
	TotalPages  int
	Leads       []models.Lead
}

type column struct {
	title string
	width float64
	value func(l models.Lead) string
}

// ReportGenerator draws with the core Helvetica font, so no font files are needed.
type ReportGenerator struct {
	fontName string
	columns  []column
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{
		fontName: "Helvetica",
		columns: []column{
			{"Name", 45, func(l models.Lead) string { return l.FirstName + " " + l.LastName }},
			{"Email", 55, func(l models.Lead) string { return l.Email }},
			{"Company", 40, func(l models.Lead) string { return orDash(l.Company) }},
			{"Source", 27, func(l models.Lead) string { return string(l.Source) }},
			{"Status", 22, func(l models.Lead) string { return string(l.Status) }},
			{"Score", 14, func(l models.Lead) string { return strconv.Itoa(l.Score) }},
			{"Value", 24, func(l models.Lead) string { return strconv.FormatFloat(l.LeadValue, 'f', 2, 64) }},
			{"Qualified", 18, func(l models.Lead) string { return yesNo(l.IsQualified) }},
			{"Last activity", 32, func(l models.Lead) string { return l.LastActivityAt.UTC().Format("2006-01-02") }},
		},
	}
}

func (g *ReportGenerator) LeadsReport(w io.Writer, data LeadsReportData) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Leads report", true)
	pdf.SetAuthor("Lead CRM", true)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			g.tableHeader(pdf)
		}
	})

	pdf.AddPage()
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 9, "Leads report", "", 1, "L", false, 0, "")
	g.kvLine(pdf, tr, "Owner", data.OwnerName)
	g.kvLine(pdf, tr, "Generated", data.GeneratedAt.UTC().Format(time.RFC1123))
	g.kvLine(pdf, tr, "Matching leads", strconv.Itoa(data.Total))
	g.kvLine(pdf, tr, "Page", fmt.Sprintf("%d of %d", data.Page, max(data.TotalPages, 1)))
	g.hr(pdf)

	if len(data.Leads) == 0 {
		pdf.SetFont(g.fontName, "I", 11)
		pdf.CellFormat(0, 8, "No leads match the current filters.", "", 1, "L", false, 0, "")
	} else {
		g.tableHeader(pdf)
		pdf.SetFont(g.fontName, "", 9)
		for i, l := range data.Leads {
			fill := i%2 == 1
			pdf.SetFillColor(245, 245, 245)
			for _, col := range g.columns {
				pdf.CellFormat(col.width, 6, fit(pdf, tr(col.value(l)), col.width-2), "1", 0, "L", fill, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render leads report: %w", err)
	}
	return nil
}

func (g *ReportGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(g.fontName, "B", 9)
	pdf.SetFillColor(220, 226, 240)
	for _, col := range g.columns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(g.fontName, "", 9)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, tr func(string) string, key, val string) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(10, y, 287, y)
	pdf.SetY(y + 3)
}

// fit truncates s with "..." until it is narrower than width. s is already
// translated to the single-byte font encoding, so cutting bytes is safe.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
