package notify

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

// renderPDF lays out plain text as a single-column letter-size PDF,
// one paragraph per input line.
func renderPDF(text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(20, 20, 20)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			doc.Ln(4)
			continue
		}
		doc.MultiCell(0, 5, line, "", "L", false)
		doc.Ln(1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
