package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/helmcode/nifty-ai/pkg/config"
	"github.com/helmcode/nifty-ai/pkg/formatter"
	"github.com/helmcode/nifty-ai/pkg/metrics"
	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/report"
)

// Fetcher obtains one analysis report. *analyzer.Analyzer satisfies it.
type Fetcher interface {
	FetchAnalysis(ctx context.Context) (*model.AnalysisReport, error)
}

var (
	errBusy        = errors.New("an analysis is already being generated, please wait")
	errRateLimited = errors.New("too many analysis requests, please try again in a minute")
)

// Server serves the report page, the JSON API and the operational endpoints.
type Server struct {
	echo    *echo.Echo
	fetcher Fetcher
	limiter *rate.Limiter
	metrics *metrics.Collector
	log     *logrus.Logger
	timeout time.Duration

	// busy is set while a fetch is outstanding.
	busy atomic.Bool
}

// New wires the routes. Fetches are paced by cfg.RateLimit and bounded by
// cfg.LLM.Timeout.
func New(fetcher Fetcher, cfg *config.Config, collector *metrics.Collector, log *logrus.Logger) *Server {
	limit := rate.Inf
	if cfg.RateLimit.RPM > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RateLimit.RPM))
	}

	s := &Server{
		echo:    echo.New(),
		fetcher: fetcher,
		limiter: rate.NewLimiter(limit, cfg.RateLimit.Burst),
		metrics: collector,
		log:     log,
		timeout: cfg.LLM.Timeout,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))

	e.GET("/", s.index)
	e.POST("/analyze", s.analyzePage)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	api := e.Group("/api")
	api.POST("/analyze", s.analyzeJSON)
	api.POST("/format", s.format, middleware.BodyLimit("1M"))

	return s
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) index(c echo.Context) error {
	return s.page(c, http.StatusOK, formatter.PageData{})
}

func (s *Server) analyzePage(c echo.Context) error {
	doc, code, err := s.generate(c.Request().Context())
	if err != nil {
		return s.page(c, code, formatter.PageData{Error: "Failed to generate analysis: " + err.Error()})
	}
	return s.page(c, code, formatter.PageData{Doc: doc})
}

func (s *Server) analyzeJSON(c echo.Context) error {
	doc, code, err := s.generate(c.Request().Context())
	if err != nil {
		return c.JSON(code, map[string]string{"error": err.Error()})
	}
	return c.JSON(code, doc)
}

func (s *Server) format(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	doc := report.FromText(string(body))
	s.metrics.ObserveDocument(doc)
	return c.JSON(http.StatusOK, doc)
}

// generate runs one fetch and builds the document. The returned status code
// is meant for the HTTP response.
func (s *Server) generate(ctx context.Context) (*model.Document, int, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.FetchRejected(metrics.ResultBusy)
		return nil, http.StatusConflict, errBusy
	}
	defer s.busy.Store(false)

	if !s.limiter.Allow() {
		s.metrics.FetchRejected(metrics.ResultRateLimited)
		return nil, http.StatusTooManyRequests, errRateLimited
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := s.metrics.FetchStarted()
	r, err := s.fetcher.FetchAnalysis(ctx)
	done(err)
	if err != nil {
		s.log.WithError(err).Error("analysis fetch failed")
		return nil, http.StatusBadGateway, err
	}

	doc := report.Build(r)
	s.metrics.ObserveDocument(doc)
	s.log.WithFields(logrus.Fields{
		"model":         r.Model,
		"blocks":        len(doc.Blocks),
		"probabilities": len(doc.Probabilities),
		"sources":       len(doc.Sources),
	}).Info("analysis generated")
	return doc, http.StatusOK, nil
}

func (s *Server) page(c echo.Context, code int, data formatter.PageData) error {
	data.Action = "/analyze"
	data.Busy = s.busy.Load()
	var buf bytes.Buffer
	if err := formatter.RenderPage(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, map[string]string{"error": msg}); err != nil {
		s.log.WithError(err).Warn("write error response")
	}
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	entry := s.log.WithFields(logrus.Fields{
		"request_id": v.RequestID,
		"method":     v.Method,
		"uri":        v.URI,
		"status":     v.Status,
		"latency":    v.Latency,
	})
	if v.Error != nil {
		entry.WithError(v.Error).Warn("request failed")
		return nil
	}
	entry.Debug("request")
	return nil
}
