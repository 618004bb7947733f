package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/nifty-ai/pkg/analyzer"
	"github.com/helmcode/nifty-ai/pkg/config"
	"github.com/helmcode/nifty-ai/pkg/metrics"
	"github.com/helmcode/nifty-ai/pkg/model"
)

const reportText = "| Upside | 35% |\n| Downside | 25% |\n| Flat/Sideways | 40% |\n\n## Outlook\nSupport near ₹24,500."

type fakeFetcher struct {
	report  *model.AnalysisReport
	err     error
	started chan struct{}
	release chan struct{}
	calls   int
}

func (f *fakeFetcher) FetchAnalysis(ctx context.Context) (*model.AnalysisReport, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.report, f.err
}

func newTestServer(t *testing.T, f Fetcher, cfg *config.Config) (*Server, *metrics.Collector) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
		cfg.RateLimit = config.RateLimitConfig{}
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	collector := metrics.NewCollector()
	return New(f, cfg, collector, log), collector
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func okFetcher() *fakeFetcher {
	return &fakeFetcher{report: &model.AnalysisReport{
		Text:    reportText,
		Sources: []model.Source{{URI: "https://www.nseindia.com/", Title: "NSE"}},
		Model:   "gemini-2.5-pro",
	}}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, okFetcher(), nil)

	rec := do(s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form method="post" action="/analyze">`)
	assert.Contains(t, rec.Body.String(), "Generate Analysis")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyzeJSON(t *testing.T) {
	s, collector := newTestServer(t, okFetcher(), nil)

	rec := do(s, http.MethodPost, "/api/analyze", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Probabilities, 3)
	assert.Equal(t, []model.Source{{URI: "https://www.nseindia.com/", Title: "NSE"}}, doc.Sources)
	assert.Equal(t, "gemini-2.5-pro", doc.Model)
	assert.Equal(t, 1.0, fetchCount(t, collector, metrics.ResultSuccess))
}

func TestAnalyzePage(t *testing.T) {
	s, _ := newTestServer(t, okFetcher(), nil)

	rec := do(s, http.MethodPost, "/analyze", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Nifty 50 Weekly Close Probabilities")
	assert.Contains(t, body, `class="bar positive" style="width: 35%"`)
	assert.Contains(t, body, "<h2>Outlook</h2>")
	assert.Contains(t, body, ">NSE</a>")
}

func TestAnalyzeFetchError(t *testing.T) {
	fetchErr := &analyzer.FetchError{Message: "Gemini API request failed: quota exceeded", Err: errors.New("quota exceeded")}
	s, collector := newTestServer(t, &fakeFetcher{err: fetchErr}, nil)

	rec := do(s, http.MethodPost, "/api/analyze", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error": "Gemini API request failed: quota exceeded"}`, rec.Body.String())

	rec = do(s, http.MethodPost, "/analyze", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert">Failed to generate analysis: Gemini API request failed: quota exceeded</div>`)
	assert.Equal(t, 2.0, fetchCount(t, collector, metrics.ResultError))
}

func TestAnalyzeBusy(t *testing.T) {
	f := okFetcher()
	f.started = make(chan struct{})
	f.release = make(chan struct{})
	s, collector := newTestServer(t, f, nil)

	first := make(chan *httptest.ResponseRecorder)
	go func() { first <- do(s, http.MethodPost, "/api/analyze", "") }()
	<-f.started

	rec := do(s, http.MethodPost, "/api/analyze", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already being generated")

	rec = do(s, http.MethodPost, "/analyze", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert">Failed to generate analysis: an analysis is already being generated, please wait</div>`)

	close(f.release)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 2.0, fetchCount(t, collector, metrics.ResultBusy))
}

func TestAnalyzeRateLimited(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = config.RateLimitConfig{RPM: 1, Burst: 1}
	f := okFetcher()
	s, _ := newTestServer(t, f, cfg)

	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/analyze", "").Code)
	rec := do(s, http.MethodPost, "/api/analyze", "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, f.calls)
}

func TestAnalyzeAppliesTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = config.RateLimitConfig{}
	cfg.LLM.Timeout = time.Minute
	var deadline time.Time
	f := fetcherFunc(func(ctx context.Context) (*model.AnalysisReport, error) {
		deadline, _ = ctx.Deadline()
		return &model.AnalysisReport{Text: "ok"}, nil
	})
	s, _ := newTestServer(t, f, cfg)

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/analyze", "").Code)
	assert.False(t, deadline.IsZero())
}

func TestFormat(t *testing.T) {
	f := okFetcher()
	s, _ := newTestServer(t, f, nil)

	rec := do(s, http.MethodPost, "/api/format", reportText)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Probabilities, 3)
	assert.Empty(t, doc.Sources)
	assert.Zero(t, f.calls)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, okFetcher(), nil)

	rec := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	do(s, http.MethodPost, "/api/analyze", "")
	rec = do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nifty_ai_analysis_fetches_total{result="success"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, okFetcher(), nil)

	rec := do(s, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Not Found"}`, rec.Body.String())
}

type fetcherFunc func(ctx context.Context) (*model.AnalysisReport, error)

func (f fetcherFunc) FetchAnalysis(ctx context.Context) (*model.AnalysisReport, error) {
	return f(ctx)
}

func fetchCount(t *testing.T, c *metrics.Collector, result string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "nifty_ai_analysis_fetches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
