package rag

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/futig/bms-rag/internal/entity"
)

const promptTemplate = `
You are an intelligent JSON data extraction engine for a BMS (Battery Management System) TARA knowledge base.

You will receive:
1. Context documents — raw JSON objects representing nodes, edges, derivations, and damage details
2. A natural language user query

YOUR TASK:
- Interpret the user's intent from the query
- Collect ALL relevant documents from the context that match the query
- Return them verbatim inside the appropriate section — DO NOT remap, rename, or restructure any fields
- Every field present in the source document MUST appear in the output with its original key and value

CRITICAL RULES:
- Return ONLY valid JSON — no markdown, no backticks, no explanation
- DO NOT rename any key (e.g. keep "id" as "id", keep "data" as "data", keep "position" as "position")
- DO NOT invent or hallucinate any values — copy them exactly from the source document
- If a source field has a value (even false / 0 / empty string) — include it as-is
- If a field is genuinely absent from the source document — omit it entirely (do not write null)
- Preserve style, position, positionAbsolute, height, width, isAsset, parentId and all nested objects exactly
- The root key must always be "result"

OUTPUT FORMAT:
{
  "result": {
    "query_intent": "<one-line description of what you understood the user wants>",
    "assets": [ <full verbatim node objects from context that match the query> ],
    "edges":  [ <full verbatim edge objects from context that match the query> ],
    "damage_scenarios": [ <full verbatim derivation objects from context that match the query> ],
    "damage_details":   [ <full verbatim detail objects from context that match the query> ]
  }
}

SECTION SELECTION — include a section only when the query asks for it:
- "assets" / "nodes" / "components" in query -> include assets
- "edges" / "connections" / "links" in query -> include edges
- "damage scenarios" / "derivations" / "loss" in query -> include damage_scenarios
- "details" / "cyber losses" / "safety" / "threats" in query -> include damage_details
- "properties" in query -> include assets (properties live inside node objects)
- "all" / "everything" / "full" / "report" in query -> include ALL four sections
- Specific node name in query -> filter all included sections to only that node
- Omit sections that are entirely irrelevant to the query

CONTEXT DOCUMENTS:
{{range .Documents}}
{{.Content}}
{{end}}

USER QUERY:
{{.Question}}

Return ONLY valid JSON starting with {"result":. No markdown. No explanation.
`

var promptTmpl = template.Must(template.New("prompt").Option("missingkey=error").Parse(promptTemplate))

type promptData struct {
	Documents []entity.ScoredDocument
	Question  string
}

// BuildPrompt renders the extraction prompt with the documents in retrieval order.
// docs may be empty; question may not.
func BuildPrompt(docs []entity.ScoredDocument, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", entity.ErrEmptyQuery
	}
	if docs == nil {
		docs = []entity.ScoredDocument{}
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, promptData{Documents: docs, Question: question}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
