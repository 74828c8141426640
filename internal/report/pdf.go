// Package report lays out the analysis narrative and figures as a PDF.
package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/spacesedan/ecsa/internal/models"
)

const (
	REPORT_TITLE       = "Earnings Call Sentiment Analysis Report"
	VISUALIZATIONS     = "Visualizations"
	FONT_FAMILY        = "Helvetica"
	PAGE_MARGIN        = 72.0
	BOTTOM_MARGIN      = 18.0
	FIGURE_WIDTH       = 432.0
	TITLE_SIZE         = 18.0
	HEADING_SIZE       = 14.0
	BODY_SIZE          = 10.0
	BODY_LINE_HEIGHT   = 14.0
	BULLET_INDENT      = 18.0
	PARAGRAPH_SPACING  = 3.6
	HEADING_SPACING    = 7.2
	SECTION_SPACING    = 14.4
	DEFAULT_PDF_AUTHOR = "ecsa"
)

// Render lays out the title, the narrative body and, on a new page, the
// figures in models.FigureOrder. Missing figures are skipped and the
// visualizations page is omitted when there are none.
func Render(narrative string, figures models.Figures) ([]byte, error) {
	start := time.Now()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(PAGE_MARGIN, PAGE_MARGIN, PAGE_MARGIN)
	pdf.SetAutoPageBreak(true, BOTTOM_MARGIN)
	pdf.SetTitle(REPORT_TITLE, true)
	pdf.SetCreator(DEFAULT_PDF_AUTHOR, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	writeTitle(pdf, tr, REPORT_TITLE)

	for _, l := range parseNarrative(narrative) {
		switch l.Kind {
		case lineHeading:
			pdf.SetFont(FONT_FAMILY, "B", HEADING_SIZE)
			pdf.MultiCell(0, HEADING_SIZE*1.3, tr(l.Runs[0].Text), "", "L", false)
			pdf.Ln(HEADING_SPACING)
		default:
			writeParagraph(pdf, tr, l)
			pdf.Ln(PARAGRAPH_SPACING)
		}
	}

	if placed := countFigures(figures); placed > 0 {
		pdf.AddPage()
		writeTitle(pdf, tr, VISUALIZATIONS)

		for _, name := range models.FigureOrder {
			fig, ok := figures[name]
			if !ok || len(fig.PNG) == 0 {
				continue
			}
			pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(fig.PNG))
			pdf.ImageOptions(name, PAGE_MARGIN, -1, FIGURE_WIDTH, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.Ln(SECTION_SPACING)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	slog.Info("[Report] Rendered PDF",
		slog.Int("pages", pdf.PageNo()),
		slog.Int("bytes", buf.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return buf.Bytes(), nil
}

func writeTitle(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(FONT_FAMILY, "B", TITLE_SIZE)
	pdf.MultiCell(0, TITLE_SIZE*1.3, tr(title), "", "L", false)
	pdf.Ln(SECTION_SPACING)
}

func writeParagraph(pdf *fpdf.Fpdf, tr func(string) string, l line) {
	left, _, _, _ := pdf.GetMargins()
	pdf.SetX(left)

	if l.Kind == lineBullet {
		pdf.SetFont(FONT_FAMILY, "", BODY_SIZE)
		pdf.SetLeftMargin(left + BULLET_INDENT)
		defer pdf.SetLeftMargin(left)
		pdf.SetX(left)
		pdf.CellFormat(BULLET_INDENT, BODY_LINE_HEIGHT, tr(l.Prefix), "", 0, "L", false, 0, "")
	}

	for _, r := range l.Runs {
		pdf.SetFont(FONT_FAMILY, r.Style, BODY_SIZE)
		pdf.Write(BODY_LINE_HEIGHT, tr(r.Text))
	}
	pdf.Ln(BODY_LINE_HEIGHT)
}

func countFigures(figures models.Figures) int {
	n := 0
	for _, name := range models.FigureOrder {
		if fig, ok := figures[name]; ok && len(fig.PNG) > 0 {
			n++
		}
	}
	return n
}

// PlainLines returns the narrative as it appears in the document, one entry
// per drawn line, headings included.
func PlainLines(narrative string) []string {
	var out []string
	for _, l := range parseNarrative(narrative) {
		var b strings.Builder
		if l.Prefix != "" {
			b.WriteString(l.Prefix + " ")
		}
		for _, r := range l.Runs {
			b.WriteString(r.Text)
		}
		out = append(out, b.String())
	}
	return out
}

// FileName is the download name for a report, e.g. AAPL_ECSA_Report_2024-05-02.pdf.
func FileName(ticker string, callDate time.Time) string {
	return fmt.Sprintf("%s_ECSA_Report_%s.pdf", strings.ToUpper(strings.TrimSpace(ticker)), callDate.Format(time.DateOnly))
}
