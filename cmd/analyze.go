package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/helmcode/nifty-ai/pkg/analyzer"
	"github.com/helmcode/nifty-ai/pkg/config"
	"github.com/helmcode/nifty-ai/pkg/formatter"
	"github.com/helmcode/nifty-ai/pkg/llm"
	"github.com/helmcode/nifty-ai/pkg/logger"
	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/report"
)

type fetcher interface {
	FetchAnalysis(ctx context.Context) (*model.AnalysisReport, error)
	Model() string
}

type analyzeOptions struct {
	configPath   string
	outputFormat string
	model        string
	input        string
	save         string
	timeout      time.Duration
	verbose      bool

	newFetcher func(ctx context.Context, cfg *config.Config) (fetcher, error)
}

func NewAnalyzeCmd() *cobra.Command {
	return newAnalyzeCmd(&analyzeOptions{newFetcher: newGeminiFetcher})
}

func newAnalyzeCmd(opts *analyzeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a Nifty 50 weekly options analysis",
		Long: `Request a web-search grounded Nifty 50 weekly options analysis from Gemini
and render it with probability bars, tables and highlighted figures.

Examples:
  # Generate and print a report
  nifty-ai analyze

  # Keep the raw report and print the structured document as JSON
  nifty-ai analyze --save report.md -o json

  # Render an existing report without calling the API
  nifty-ai analyze --input report.md -o html > report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", formatter.FormatHuman, "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	cmd.Flags().StringVar(&opts.model, "model", "", "Gemini model (default from config or "+llm.DefaultGeminiModel+")")
	cmd.Flags().StringVar(&opts.input, "input", "", "Render report text from a file instead of calling the API")
	cmd.Flags().StringVar(&opts.save, "save", "", "Write the raw report text to a file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the request after this long (0 means no timeout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	if !slices.Contains(formatter.Formats, opts.outputFormat) {
		return fmt.Errorf("unsupported output format %q (supported: %s)", opts.outputFormat, strings.Join(formatter.Formats, ", "))
	}

	cfg, err := loadConfig(opts.configPath, opts.model, opts.verbose)
	if err != nil {
		return err
	}
	if opts.timeout > 0 {
		cfg.LLM.Timeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := cmd.ErrOrStderr()
	ctx := cmd.Context()

	var r *model.AnalysisReport
	if opts.input != "" {
		data, err := os.ReadFile(opts.input)
		if err != nil {
			return fmt.Errorf("read report %s: %w", opts.input, err)
		}
		r = &model.AnalysisReport{Text: string(data)}
		logger.Log.WithField("file", opts.input).Debug("rendering report from file")
	} else {
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
		f, err := opts.newFetcher(ctx, cfg)
		if err != nil {
			return err
		}
		printHeader(progress, f.Model())
		r, err = fetchReport(ctx, f, cfg.LLM.Timeout, progress)
		if err != nil {
			return fmt.Errorf("Failed to generate analysis: %w", err)
		}
	}

	if opts.save != "" {
		if err := os.WriteFile(opts.save, []byte(r.Text), 0o644); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		printSuccess(progress, fmt.Sprintf("Report saved to %s", opts.save))
	}

	return formatter.DisplayResults(out, report.Build(r), opts.outputFormat)
}

func fetchReport(ctx context.Context, f fetcher, timeout time.Duration, progress io.Writer) (*model.AnalysisReport, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(progress))
	s.Suffix = " Generating analysis with Google Search grounding..."
	s.Start()

	start := time.Now()
	r, err := f.FetchAnalysis(ctx)
	s.Stop()
	if err != nil {
		logger.Log.WithError(err).Debug("analysis fetch failed")
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"model":    r.Model,
		"sources":  len(r.Sources),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("analysis fetched")
	printSuccess(progress, fmt.Sprintf("Analysis complete (%d sources)", len(r.Sources)))
	return r, nil
}

func newGeminiFetcher(ctx context.Context, cfg *config.Config) (fetcher, error) {
	a, err := analyzer.NewWithProvider(ctx, llm.Provider(cfg.LLM.Provider), cfg.LLMOptions())
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	return a, nil
}
