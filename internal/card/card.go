package card

import (
	"errors"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/ogpreview/internal/extract"
)

// Write renders extracted metadata as a minimal one-page PDF preview card:
// title as a heading, description as body text, and the image URL as a
// clickable link. This is intentionally simple and performs no layout beyond
// basic line wrapping.
func Write(res extract.Result, outPath string) error {
	if outPath == "" {
		return errors.New("card output path not configured")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	title := res.Title
	if title == "" {
		title = "(untitled)"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, title, "", "L", false)
	pdf.Ln(4)

	if res.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, res.Description, "", "L", false)
		pdf.Ln(4)
	}
	if res.Image != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.WriteLinkString(5, res.Image, res.Image)
		pdf.Ln(6)
	}

	return pdf.OutputFileAndClose(outPath)
}
