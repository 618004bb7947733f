package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helmcode/nifty-ai/pkg/model"
)

func plain(s string) model.InlineSpan    { return model.InlineSpan{Kind: model.SpanPlain, Text: s} }
func bold(s string) model.InlineSpan     { return model.InlineSpan{Kind: model.SpanBold, Text: s} }
func percent(s string) model.InlineSpan  { return model.InlineSpan{Kind: model.SpanPercentage, Text: s} }
func currency(s string) model.InlineSpan { return model.InlineSpan{Kind: model.SpanCurrency, Text: s} }

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []model.InlineSpan
	}{
		{"empty", "", nil},
		{"plain only", "RSI is neutral", []model.InlineSpan{plain("RSI is neutral")}},
		{
			"bold wins over percentage inside it",
			"Gain **20%** with ₹1,200 cr inflow",
			[]model.InlineSpan{plain("Gain "), bold("20%"), plain(" with "), currency("₹1,200 cr"), plain(" inflow")},
		},
		{"simple percentage", "chance 60% rebound", []model.InlineSpan{plain("chance "), percent("60%"), plain(" rebound")}},
		{"grouped percentage", "1,250.75%", []model.InlineSpan{percent("1,250.75%")}},
		{"fractional percentage", "IV at 12.5%.", []model.InlineSpan{plain("IV at "), percent("12.5%"), plain(".")}},
		{"four leading digits start later", "1000%", []model.InlineSpan{plain("1"), percent("000%")}},
		{"bad grouping skips ahead", "12.5.3%", []model.InlineSpan{plain("12."), percent("5.3%")}},
		{"short group restarts", "1,234,5%", []model.InlineSpan{plain("1,234,"), percent("5%")}},
		{"dot without fraction", "5.%", []model.InlineSpan{plain("5.%")}},
		{"digits without percent", "Nifty at 24,500", []model.InlineSpan{plain("Nifty at 24,500")}},
		{"currency with space", "premium ₹ 120.50 each", []model.InlineSpan{plain("premium "), currency("₹ 120.50"), plain(" each")}},
		{"currency crore without space", "₹500cr", []model.InlineSpan{currency("₹500cr")}},
		{"currency stops before crore", "₹1,200 crore", []model.InlineSpan{currency("₹1,200 cr"), plain("ore")}},
		{"rupee without digits", "₹ n/a", []model.InlineSpan{plain("₹ n/a")}},
		{"unclosed bold", "**open 35%", []model.InlineSpan{plain("**open "), percent("35%")}},
		{"empty bold", "****", []model.InlineSpan{bold("")}},
		{"two bold runs", "**a** and **b**", []model.InlineSpan{bold("a"), plain(" and "), bold("b")}},
		{"surrounding whitespace kept", "  35%  ", []model.InlineSpan{plain("  "), percent("35%"), plain("  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.line))
		})
	}
}

func TestHighlightCoversInput(t *testing.T) {
	lines := []string{
		"**Actionable Summary:** buy 24,600 CE at ₹85 (success 40%)",
		"FII inflows of ₹1,200 cr signal bullishness; DII ₹ 3,400.5cr",
		"नमस्ते 25% — ₹ 10",
		"**unterminated ₹ and 7%",
	}
	for _, line := range lines {
		var sb strings.Builder
		for _, s := range Highlight(line) {
			if s.Kind == model.SpanBold {
				sb.WriteString("**" + s.Text + "**")
				continue
			}
			sb.WriteString(s.Text)
		}
		assert.Equal(t, line, sb.String())
	}
}

func TestHighlightLongDigitRuns(t *testing.T) {
	for _, line := range []string{
		strings.Repeat("1,", 100000) + "x",
		strings.Repeat("9", 200000) + "%",
		strings.Repeat("1.", 100000) + "%",
	} {
		start := time.Now()
		spans := Highlight(line)
		elapsed := time.Since(start)

		var rebuilt strings.Builder
		for _, s := range spans {
			rebuilt.WriteString(s.Text)
		}
		assert.Equal(t, line, rebuilt.String())
		assert.Less(t, elapsed, time.Second)
	}
}
