package llm

import "context"

// LLM generates grounded text for a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
	GetModel() string
}

// Response is the text of a generation plus the web pages that grounded it.
type Response struct {
	Text      string
	Citations []Citation
}

// Citation is a grounding reference as returned by the backend. URI may be
// empty when the backend cites something other than a web page.
type Citation struct {
	URI   string
	Title string
}
