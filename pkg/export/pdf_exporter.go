package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF. The last column gets
// the remaining page width and wraps, since answer texts run long.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pdfPageWidth    = 190.0
	pdfNarrowColumn = 45.0
	pdfLineHeight   = 6.0
)

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	widths := columnWidths(len(data.Headers))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, row := range data.Rows {
		if len(row) != len(data.Headers) {
			return nil, fmt.Errorf("pdf row %d has %d values, want %d", i, len(row), len(data.Headers))
		}
		e.renderRow(pdf, widths, row)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// renderRow wraps the last cell with MultiCell and pads the narrow cells
// so every cell in the row shares the same height.
func (e *PDFExporter) renderRow(pdf *gofpdf.Fpdf, widths []float64, row []string) {
	last := len(row) - 1
	lines := pdf.SplitLines([]byte(row[last]), widths[last])
	height := pdfLineHeight * float64(len(lines))
	if height < pdfLineHeight {
		height = pdfLineHeight
	}

	x, y := pdf.GetXY()
	for i := 0; i < last; i++ {
		pdf.Rect(x, y, widths[i], height, "D")
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], pdfLineHeight, row[i], "", 0, "", false, 0, "")
		x += widths[i]
	}
	pdf.Rect(x, y, widths[last], height, "D")
	pdf.SetXY(x, y)
	pdf.MultiCell(widths[last], pdfLineHeight, row[last], "", "", false)
	pdf.SetXY(10, y+height)
}

func columnWidths(count int) []float64 {
	widths := make([]float64, count)
	if count == 1 {
		widths[0] = pdfPageWidth
		return widths
	}
	narrow := pdfNarrowColumn
	if float64(count-1)*narrow > pdfPageWidth/2 {
		narrow = pdfPageWidth / 2 / float64(count-1)
	}
	for i := 0; i < count-1; i++ {
		widths[i] = narrow
	}
	widths[count-1] = pdfPageWidth - float64(count-1)*narrow
	return widths
}
