package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/bms-rag/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(answer *entity.Answer) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", baseTitle)
	fmt.Fprintf(&buf, "**Query:** %s\n\n", answer.Query)
	fmt.Fprintf(&buf, "**Intent:** %s\n\n", answer.Intent)

	if len(answer.Sections) > 0 {
		buf.WriteString("## Sections\n\n")
		for _, s := range answer.Sections {
			fmt.Fprintf(&buf, "- %s: %d item(s)\n", s.Name, s.Count)
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Response\n\n```json\n")
	buf.Write(PrettyJSON(answer.JSON))
	buf.WriteString("\n```\n")

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
