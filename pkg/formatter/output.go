package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/parser"
)

// Output formats accepted by DisplayResults.
const (
	FormatHuman    = "human"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Formats lists the supported output formats.
var Formats = []string{FormatHuman, FormatJSON, FormatYAML, FormatHTML, FormatMarkdown}

// ProbabilityPanelTitle heads the probability bars in every visual format.
const ProbabilityPanelTitle = "Nifty 50 Weekly Close Probabilities"

// DisplayResults formats and writes a report document
func DisplayResults(w io.Writer, doc *model.Document, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, doc)
	case FormatYAML:
		return displayYAML(w, doc)
	case FormatHTML:
		return RenderReportPage(w, doc)
	case FormatMarkdown:
		return displayMarkdown(w, doc)
	case FormatHuman, "":
		displayHuman(w, doc)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

func displayJSON(w io.Writer, doc *model.Document) error {
	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, doc *model.Document) error {
	output, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayMarkdown(w io.Writer, doc *model.Document) error {
	var sb strings.Builder
	sb.WriteString(parser.Markdown(doc.Blocks))
	sb.WriteString("\n")
	if len(doc.Sources) > 0 {
		sb.WriteString("\n### Sources\n")
		for _, s := range doc.Sources {
			fmt.Fprintf(&sb, "* [%s](%s)\n", s.Label(), s.URI)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// BarWidth is the width of a probability bar as a percentage of the full
// bar, clamped to 0-100.
func BarWidth(value float64) float64 {
	switch {
	case value < 0 || math.IsNaN(value):
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}

// Tone is the colour family used for a direction.
func Tone(d model.Direction) string {
	switch d {
	case model.Upside:
		return "positive"
	case model.Downside:
		return "negative"
	default:
		return "neutral"
	}
}
