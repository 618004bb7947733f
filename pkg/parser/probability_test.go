package parser

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/nifty-ai/pkg/model"
)

const probabilityReport = `| Direction | Probability |
|---|---|
| Upside | 35% |
| Downside | 25% |
| Flat/Sideways | 40% |

## Part 1: Probability Estimates
RSI oversold indicates 60% rebound chance.`

func TestExtractProbabilities(t *testing.T) {
	got := ExtractProbabilities(probabilityReport)

	require.Len(t, got, 3)
	assert.Equal(t, []model.ProbabilityRecord{
		{Direction: model.Upside, Label: "35%", Value: 35},
		{Direction: model.Downside, Label: "25%", Value: 25},
		{Direction: model.FlatSideways, Label: "40%", Value: 40},
	}, got)
}

func TestExtractProbabilitiesSortsByDirection(t *testing.T) {
	text := "|flat/sideways|  40.5 %|\n|  DOWNSIDE |25%|\n| upside | 34.5% |"

	got := ExtractProbabilities(text)

	require.Len(t, got, 3)
	assert.Equal(t, model.Upside, got[0].Direction)
	assert.Equal(t, "34.5%", got[0].Label)
	assert.Equal(t, 34.5, got[0].Value)
	assert.Equal(t, model.Downside, got[1].Direction)
	assert.Equal(t, model.FlatSideways, got[2].Direction)
	assert.Equal(t, "40.5 %", got[2].Label)
	assert.Equal(t, 40.5, got[2].Value)
}

func TestExtractProbabilitiesKeepsDuplicates(t *testing.T) {
	text := "| Downside | 20% |\n| Upside | 30% |\nlater:\n| Downside | 22% |"

	got := ExtractProbabilities(text)

	require.Len(t, got, 3)
	assert.Equal(t, model.Upside, got[0].Direction)
	assert.Equal(t, "20%", got[1].Label)
	assert.Equal(t, "22%", got[2].Label)
}

func TestExtractProbabilitiesNoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"no table here",
		"| Direction | Probability |\n|---|---|",
		"| Upside | high |",
		"| Upside | 35 |",
		"| Sideways | 35% |",
	} {
		got := ExtractProbabilities(text)
		assert.NotNil(t, got)
		assert.Empty(t, got, text)
	}
}

func TestExtractProbabilitiesOddNumbers(t *testing.T) {
	got := ExtractProbabilities("| Upside | 12.5.1% |\n| Downside | .% |")

	require.Len(t, got, 2)
	assert.Equal(t, 12.5, got[0].Value)
	assert.Equal(t, ".%", got[1].Label)
	assert.Equal(t, 0.0, got[1].Value)
}

func TestExtractProbabilitiesHugeNumber(t *testing.T) {
	text := "| Upside | " + strings.Repeat("9", 10000) + "% |"

	start := time.Now()
	got := ExtractProbabilities(text)
	elapsed := time.Since(start)

	require.Len(t, got, 1)
	assert.True(t, math.IsInf(got[0].Value, 1), "value = %v", got[0].Value)
	assert.Less(t, elapsed, time.Second)
}

func TestLeadingFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"35", 35},
		{"12.5.1", 12.5},
		{"5.", 5},
		{".5", 0.5},
		{".", 0},
		{"..5", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leadingFloat(tt.in), "leadingFloat(%q)", tt.in)
	}
}
