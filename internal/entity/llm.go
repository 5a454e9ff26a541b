package entity

// Answer sections in the order they are reported
const (
	SectionAssets          = "assets"
	SectionEdges           = "edges"
	SectionDamageScenarios = "damage_scenarios"
	SectionDamageDetails   = "damage_details"
)

var Sections = []string{
	SectionAssets,
	SectionEdges,
	SectionDamageScenarios,
	SectionDamageDetails,
}

// ResultRootKey is the key every model reply must be rooted at
const ResultRootKey = "result"

// UnknownIntent is reported when the reply carries no query_intent
const UnknownIntent = "n/a"

type SectionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Answer is the outcome of one query. JSON is nil when the model reply could not be
// parsed; Raw always holds the reply as returned.
type Answer struct {
	Query      string         `json:"query"`
	Raw        string         `json:"-"`
	JSON       []byte         `json:"-"`
	Intent     string         `json:"intent"`
	Sections   []SectionCount `json:"sections"`
	Retrieved  int            `json:"retrieved"`
	ParseError string         `json:"parse_error,omitempty"`
}

func (a *Answer) Parsed() bool {
	return a != nil && a.JSON != nil
}

// Export formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
)
