package export

import (
	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// writePDF lays out a centered 16pt title followed by the 12pt body and
// returns the page count of the written file.
func writePDF(path, title, body string) (int, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "", 16)
	doc.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, tr(body), "", "L", false)

	if err := doc.OutputFileAndClose(path); err != nil {
		return 0, err
	}
	return api.PageCountFile(path)
}
