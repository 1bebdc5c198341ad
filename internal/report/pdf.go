package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// pdfColumns are the columns that fit a landscape page, with relative
// widths.
var pdfColumns = []struct {
	name  string
	width float64
}{
	{ColStudentID, 2.2},
	{ColName, 3},
	{ColRegistration, 2},
	{ColProgram, 3},
	{ColCore, 1.1},
	{ColSkills, 1.1},
	{ColElective, 1.4},
	{ColCreditsEarned, 1.4},
	{ColCreditsRemaining, 1.6},
	{ColNextTermAward, 1.4},
	{ColComments, 8},
}

const (
	pdfPageWidth = 277.0
	pdfMaxLines  = 4
)

// RenderPDF creates a landscape PDF with a title line and one table row per
// dataset row. Long comments wrap over up to four lines.
func RenderPDF(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	total := 0.0
	for _, c := range pdfColumns {
		total += c.width
	}
	widths := make([]float64, len(pdfColumns))
	for i, c := range pdfColumns {
		widths[i] = pdfPageWidth * c.width / total
	}

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range pdfColumns {
			pdf.CellFormat(widths[i], 7, c.name, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 7.5)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	const lineHeight = 4.0
	for _, row := range data.Rows {
		lines := 1
		cells := make([][]string, len(pdfColumns))
		for i, c := range pdfColumns {
			var split []string
			for _, line := range pdf.SplitLines([]byte(tr(row[c.name])), widths[i]-2) {
				split = append(split, string(line))
			}
			if len(split) == 0 {
				split = []string{""}
			}
			if len(split) > pdfMaxLines {
				split = append(split[:pdfMaxLines-1], split[pdfMaxLines-1]+" ...")
			}
			cells[i] = split
			lines = max(lines, len(split))
		}

		height := float64(lines) * lineHeight
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+height > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i, split := range cells {
			pdf.Rect(x, y, widths[i], height, "D")
			for j, line := range split {
				pdf.SetXY(x+1, y+float64(j)*lineHeight)
				pdf.CellFormat(widths[i]-2, lineHeight, line, "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
		pdf.SetXY(10, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
