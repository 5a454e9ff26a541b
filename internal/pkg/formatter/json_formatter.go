package formatter

import (
	"github.com/futig/bms-rag/internal/entity"
)

const (
	jsonContentType   = "application/json"
	jsonFileExtension = ".json"
)

// JSONFormatter writes the model's JSON as returned, indented
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (jf *JSONFormatter) Format(answer *entity.Answer) ([]byte, error) {
	if !answer.Parsed() {
		return nil, entity.ErrEmptyReply
	}
	out := PrettyJSON(answer.JSON)
	return append(out, '\n'), nil
}

func (jf *JSONFormatter) ContentType() string {
	return jsonContentType
}

func (jf *JSONFormatter) FileExtension() string {
	return jsonFileExtension
}
