package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helmcode/nifty-ai/pkg/llm"
	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/prompts"
)

// FetchError is returned when an analysis could not be obtained from the
// backend. Message is meant to be shown to the user as-is.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

type Analyzer struct {
	llm llm.LLM
	now func() time.Time
}

func NewWithLLM(l llm.LLM) *Analyzer {
	return &Analyzer{llm: l, now: time.Now}
}

func NewWithProvider(ctx context.Context, provider llm.Provider, config map[string]string) (*Analyzer, error) {
	factory := llm.NewFactory()
	llmInstance, err := factory.CreateLLM(ctx, provider, config)
	if err != nil {
		return nil, err
	}
	return NewWithLLM(llmInstance), nil
}

// Model returns the name of the backing model.
func (a *Analyzer) Model() string {
	return a.llm.GetModel()
}

// FetchAnalysis requests one grounded market report. It makes a single call
// and never retries.
func (a *Analyzer) FetchAnalysis(ctx context.Context) (*model.AnalysisReport, error) {
	resp, err := a.llm.Generate(ctx, prompts.BuildAnalysisPrompt())
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, &FetchError{Message: "Gemini API returned a malformed response: " + err.Error(), Err: err}
		}
		return nil, &FetchError{Message: fmt.Sprintf("Gemini API request failed: %v", err), Err: err}
	}
	if resp == nil {
		return nil, &FetchError{Message: "Gemini API returned a malformed response: " + llm.ErrEmptyResponse.Error(), Err: llm.ErrEmptyResponse}
	}

	return &model.AnalysisReport{
		Text:        resp.Text,
		Sources:     sourcesFromCitations(resp.Citations),
		Model:       a.llm.GetModel(),
		GeneratedAt: a.now(),
	}, nil
}

func sourcesFromCitations(citations []llm.Citation) []model.Source {
	sources := make([]model.Source, 0, len(citations))
	for _, c := range citations {
		title := c.Title
		// genai reports a missing title as "".
		if title == "" {
			title = model.DefaultSourceTitle
		}
		sources = append(sources, model.Source{URI: c.URI, Title: title})
	}
	return model.DedupeSources(sources)
}
