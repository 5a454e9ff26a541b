package formatter

import (
	"bytes"
	"os"
	"strings"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In Docker runtime fonts are copied next to the binary.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct {
	fontPaths []string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{
		fontPaths: []string{pdfFontRuntimePath, pdfFontSourcePath},
	}
}

func (pf *PDFFormatter) resolveFontPath() string {
	for _, p := range pf.fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(answer *entity.Answer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts only cover cp1252, so text is translated when no UTF-8 font is bundled.
	fontName, bodyFont := "Arial", "Courier"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := pf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName, bodyFont = pdfFontName, pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(baseTitle))
	pdf.Ln(12)

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()
	for _, line := range summaryLines(answer) {
		pdf.MultiCell(0, lineHeight*1.5, tr(line), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont(bodyFont, "", 8)
	_, lineHeight = pdf.GetFontSize()
	body := strings.ReplaceAll(string(PrettyJSON(answer.JSON)), "\t", "    ")
	pdf.MultiCell(0, lineHeight*1.3, tr(body), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
