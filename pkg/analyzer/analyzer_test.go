package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/nifty-ai/pkg/llm"
	"github.com/helmcode/nifty-ai/pkg/model"
)

type fakeLLM struct {
	resp   *llm.Response
	err    error
	prompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (*llm.Response, error) {
	f.prompt = prompt
	return f.resp, f.err
}

func (f *fakeLLM) GetModel() string { return "fake-model" }

func TestFetchAnalysis(t *testing.T) {
	fake := &fakeLLM{resp: &llm.Response{
		Text: "| Upside | 35% |",
		Citations: []llm.Citation{
			{URI: "https://nseindia.com", Title: "NSE"},
			{URI: "", Title: "dropped"},
			{URI: "https://moneycontrol.com"},
			{URI: "https://nseindia.com", Title: "NSE again"},
		},
	}}
	a := NewWithLLM(fake)
	fixed := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	report, err := a.FetchAnalysis(context.Background())

	require.NoError(t, err)
	assert.Contains(t, fake.prompt, "| Flat/Sideways | 40% |")
	assert.Equal(t, "| Upside | 35% |", report.Text)
	assert.Equal(t, []model.Source{
		{URI: "https://nseindia.com", Title: "NSE"},
		{URI: "https://moneycontrol.com", Title: "Untitled"},
	}, report.Sources)
	assert.Equal(t, "fake-model", report.Model)
	assert.Equal(t, fixed, report.GeneratedAt)
}

func TestFetchAnalysisBackendFailure(t *testing.T) {
	backendErr := errors.New("connection reset")
	a := NewWithLLM(&fakeLLM{err: backendErr})

	report, err := a.FetchAnalysis(context.Background())

	assert.Nil(t, report)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Gemini API request failed: connection reset", fetchErr.Message)
	assert.ErrorIs(t, err, backendErr)
}

func TestFetchAnalysisMalformedResponse(t *testing.T) {
	for name, fake := range map[string]*fakeLLM{
		"empty response": {err: llm.ErrEmptyResponse},
		"nil response":   {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewWithLLM(fake).FetchAnalysis(context.Background())

			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, fetchErr.Message, "malformed response")
			assert.ErrorIs(t, err, llm.ErrEmptyResponse)
		})
	}
}
