package formatter

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/parser"
)

const (
	lineWidth = 80
	barCells  = 30
	indent    = "   "
)

func displayHuman(w io.Writer, doc *model.Document) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	white.Fprintln(w, "📄 ANALYSIS REPORT")
	switch {
	case doc.Model != "" && !doc.GeneratedAt.IsZero():
		fmt.Fprintln(w, color.HiBlackString("   %s · %s", doc.Model, doc.GeneratedAt.Format("2006-01-02 15:04 MST")))
	case doc.Model != "":
		fmt.Fprintln(w, color.HiBlackString("   %s", doc.Model))
	}
	fmt.Fprintln(w)

	if len(doc.Probabilities) > 0 {
		fmt.Fprintln(w, probabilityPanel(doc.Probabilities))
		fmt.Fprintln(w)
	}

	for _, block := range doc.Blocks {
		displayBlock(w, block)
	}

	if len(doc.Sources) > 0 {
		fmt.Fprintln(w)
		cyan.Fprintln(w, "🔗 SOURCES:")
		for i, s := range doc.Sources {
			fmt.Fprintf(w, "   %d. %s\n", i+1, s.Label())
			if s.Label() != s.URI {
				fmt.Fprintf(w, "      %s\n", color.HiBlackString(s.URI))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json, -o yaml or -o html for machine-readable output"))
}

func displayBlock(w io.Writer, block model.RenderBlock) {
	switch block.Kind {
	case model.BlockHeading2:
		heading := color.New(color.FgCyan, color.Bold)
		fmt.Fprintln(w)
		heading.Fprintln(w, styleSpans(upperSpans(block.Spans)))
		fmt.Fprintln(w, color.HiBlackString(strings.Repeat("─", lineWidth)))
	case model.BlockHeading3:
		color.New(color.FgCyan).Fprintln(w, styleSpans(block.Spans))
	case model.BlockListItem:
		marker := "•"
		if block.Ordered {
			marker = fmt.Sprintf("%d.", block.Number)
		}
		prefix := indent + marker + " "
		fmt.Fprintln(w, wrapSpans(block.Spans, lineWidth, prefix, strings.Repeat(" ", utf8.RuneCountInString(prefix))))
	case model.BlockParagraph:
		fmt.Fprintln(w, wrapSpans(block.Spans, lineWidth, indent, indent))
	case model.BlockLineBreak:
		fmt.Fprintln(w)
	case model.BlockTable:
		fmt.Fprintln(w, renderTable(block))
	}
}

func probabilityPanel(records []model.ProbabilityRecord) string {
	var sb strings.Builder
	sb.WriteString(color.New(color.FgCyan, color.Bold).Sprint("📊 " + ProbabilityPanelTitle))
	for _, p := range records {
		filled := int(math.Round(BarWidth(p.Value) / 100 * barCells))
		bar := getDirectionColor(p.Direction).Sprint(strings.Repeat("█", filled)) +
			color.HiBlackString(strings.Repeat("░", barCells-filled))
		fmt.Fprintf(&sb, "\n%-14s %s %s", p.Direction, bar, color.New(color.FgCyan, color.Bold).Sprint(p.Label))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(sb.String())
}

func renderTable(block model.RenderBlock) string {
	header := make([]string, len(block.Header))
	for i, cell := range block.Header {
		header[i] = styleSpans(parser.Highlight(cell))
	}
	rows := make([][]string, len(block.Rows))
	for i, row := range block.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = styleSpans(parser.Highlight(cell))
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(header...).
		Rows(rows...)
	return t.Render()
}

func getDirectionColor(d model.Direction) *color.Color {
	switch d {
	case model.Upside:
		return color.New(color.FgGreen)
	case model.Downside:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func styleSpan(s model.InlineSpan) string {
	switch s.Kind {
	case model.SpanBold:
		return color.New(color.Bold).Sprint(s.Text)
	case model.SpanPercentage:
		return color.New(color.FgCyan, color.Bold).Sprint(s.Text)
	case model.SpanCurrency:
		return color.New(color.FgGreen, color.Bold).Sprint(s.Text)
	default:
		return s.Text
	}
}

func styleSpans(spans []model.InlineSpan) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(styleSpan(s))
	}
	return sb.String()
}

// upperSpans upper-cases span text before styling so escape codes are left
// intact.
func upperSpans(spans []model.InlineSpan) []model.InlineSpan {
	out := make([]model.InlineSpan, len(spans))
	for i, s := range spans {
		out[i] = model.InlineSpan{Kind: s.Kind, Text: strings.ToUpper(s.Text)}
	}
	return out
}

// word is a styled chunk of a line together with its visible width.
type word struct {
	text  string
	width int
}

// wrapSpans word-wraps styled spans. Widths are measured on the unstyled
// text so colour codes do not shorten lines. Pieces of adjacent spans that
// touch without whitespace stay glued together.
func wrapSpans(spans []model.InlineSpan, width int, firstIndent, restIndent string) string {
	var words []word
	glue := false
	for _, s := range spans {
		fields := strings.Fields(s.Text)
		for i, f := range fields {
			styled := styleSpan(model.InlineSpan{Kind: s.Kind, Text: f})
			w := utf8.RuneCountInString(f)
			if i == 0 && glue && len(words) > 0 && !startsWithSpace(s.Text) {
				words[len(words)-1].text += styled
				words[len(words)-1].width += w
				continue
			}
			words = append(words, word{text: styled, width: w})
		}
		if s.Text != "" {
			glue = len(fields) > 0 && !endsWithSpace(s.Text)
		}
	}

	var result strings.Builder
	current := firstIndent
	currentWidth := utf8.RuneCountInString(firstIndent)
	lineIndent := firstIndent
	for _, wd := range words {
		switch {
		case current == lineIndent:
			current += wd.text
			currentWidth += wd.width
		case currentWidth+wd.width+1 > width:
			result.WriteString(current + "\n")
			lineIndent = restIndent
			current = restIndent + wd.text
			currentWidth = utf8.RuneCountInString(restIndent) + wd.width
		default:
			current += " " + wd.text
			currentWidth += wd.width + 1
		}
	}
	result.WriteString(current)
	return strings.TrimRight(result.String(), " ")
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
