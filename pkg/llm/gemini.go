package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-pro"

// ErrEmptyResponse is returned when the backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from Gemini")

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	return NewGeminiWithModel(ctx, apiKey, DefaultGeminiModel)
}

func NewGeminiWithModel(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate runs a single web-search grounded generation.
func (g *Gemini) Generate(ctx context.Context, prompt string) (*Response, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}
	return responseFromGemini(resp)
}

// GetModel returns the model being used by this Gemini client
func (g *Gemini) GetModel() string {
	return g.model
}

// responseFromGemini pulls the text and grounding chunks out of the first
// candidate.
func responseFromGemini(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrEmptyResponse
	}
	candidate := resp.Candidates[0]

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, ErrEmptyResponse
	}

	out := &Response{Text: text.String()}
	if gm := candidate.GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out.Citations = append(out.Citations, Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return out, nil
}
