// Package llm produces model replies for rendered prompts.
package llm

import "context"

// Generator is implemented by Connector and MockConnector
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

var (
	_ Generator = &Connector{}
	_ Generator = &MockConnector{}
)
