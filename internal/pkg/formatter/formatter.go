package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/futig/bms-rag/internal/entity"
)

const baseTitle = "BMS TARA Query Report"

type Formatter interface {
	Format(answer *entity.Answer) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format string) (Formatter, error) {
	switch format {
	case entity.FormatJSON:
		return NewJSONFormatter(), nil
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// PrettyJSON indents data by two spaces. Invalid input is returned unchanged.
func PrettyJSON(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return data
	}
	return buf.Bytes()
}

// summaryLines is the human readable header shared by the report formats
func summaryLines(answer *entity.Answer) []string {
	lines := []string{
		"Query: " + answer.Query,
		"Intent: " + answer.Intent,
	}
	for _, s := range answer.Sections {
		lines = append(lines, fmt.Sprintf("%s: %d item(s)", s.Name, s.Count))
	}
	return lines
}
