package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/helmcode/nifty-ai/pkg/config"
	"github.com/helmcode/nifty-ai/pkg/logger"
)

// loadConfig resolves the configuration shared by all subcommands and
// applies the flag overrides on top of it.
func loadConfig(path, model string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func printHeader(w io.Writer, model string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "📈 Nifty 50 AI Analysis")
	fmt.Fprintf(w, "🤖 Model: %s\n", model)
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}
