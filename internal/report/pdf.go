package report

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// column widths in mm, summing to the printable width of landscape A4
var pdfWidths = []float64{22, 38, 28, 30, 22, 40, 12, 31, 27, 27}

const (
	pdfMargin = 10.0
	pdfRowH   = 7.0
)

// WritePDF writes the report as a landscape A4 table. Cells with a link
// become clickable URI annotations, so links should be absolute.
func WritePDF(w io.Writer, rep Report) error {
	return pdfDoc(rep).Output(w)
}

func pdfDoc(rep Report) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator(FilenamePrefix, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageH := pdf.GetPageSize()
	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(63, 81, 181)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range rep.Columns {
			pdf.CellFormat(pdfWidths[i], pdfRowH, tr(col), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(rep.Title), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	if len(rep.Rows) == 0 {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(sum(pdfWidths), pdfRowH, "No data.", "1", 1, "L", false, 0, "")
		return pdf
	}

	for n, row := range rep.Rows {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for i, cell := range row {
			if i >= len(pdfWidths) {
				break
			}
			if cell.Link != "" {
				pdf.SetFont("Helvetica", "U", 8)
				pdf.SetTextColor(25, 118, 210)
			} else {
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetTextColor(0, 0, 0)
			}
			text := fitText(pdf, tr(cell.Text), pdfWidths[i])
			pdf.CellFormat(pdfWidths[i], pdfRowH, text, "1", 0, "L", fill, 0, cell.Link)
		}
		pdf.Ln(-1)
	}
	return pdf
}

// fitText shortens s with an ellipsis until it fits a cell of width w.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	room := w - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= room {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > room {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

func sum(ws []float64) float64 {
	var t float64
	for _, w := range ws {
		t += w
	}
	return t
}
