package parser

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/helmcode/nifty-ai/pkg/model"
)

// directionLabels are tried longest first so "Flat/Sideways" is not cut short.
var directionLabels = []string{"Flat/Sideways", "Downside", "Upside"}

// ExtractProbabilities finds every "| <Direction> | <number>% |" row in the
// report, wherever it appears, and returns the records ordered Upside,
// Downside, Flat/Sideways. Repeated directions are all kept in source order.
// A report without such rows yields an empty slice.
func ExtractProbabilities(text string) []model.ProbabilityRecord {
	records := []model.ProbabilityRecord{}

	for i := 0; i < len(text); {
		if text[i] != '|' {
			i++
			continue
		}
		rec, end, ok := matchProbabilityRow(text, i)
		if !ok {
			i++
			continue
		}
		records = append(records, rec)
		i = end
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Direction < records[b].Direction
	})
	return records
}

// matchProbabilityRow matches | ws* direction ws* | ws* [0-9.]+ ws* % ws* |
// starting at the pipe at i and returns the offset just past the closing pipe.
func matchProbabilityRow(s string, i int) (model.ProbabilityRecord, int, bool) {
	j := skipSpace(s, i+1)

	dir, n, ok := matchDirection(s[j:])
	if !ok {
		return model.ProbabilityRecord{}, 0, false
	}
	j = skipSpace(s, j+n)
	if j >= len(s) || s[j] != '|' {
		return model.ProbabilityRecord{}, 0, false
	}
	j = skipSpace(s, j+1)

	numStart := j
	for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
		j++
	}
	if j == numStart {
		return model.ProbabilityRecord{}, 0, false
	}
	number := s[numStart:j]
	j = skipSpace(s, j)
	if j >= len(s) || s[j] != '%' {
		return model.ProbabilityRecord{}, 0, false
	}
	labelEnd := j + 1
	j = skipSpace(s, labelEnd)
	if j >= len(s) || s[j] != '|' {
		return model.ProbabilityRecord{}, 0, false
	}

	return model.ProbabilityRecord{
		Direction: dir,
		Label:     s[numStart:labelEnd],
		Value:     leadingFloat(number),
	}, j + 1, true
}

func matchDirection(s string) (model.Direction, int, bool) {
	for _, label := range directionLabels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			dir, _ := model.ParseDirection(label)
			return dir, len(label), true
		}
	}
	return 0, 0, false
}

// leadingFloat parses the longest prefix of n shaped like \d*(\.\d*)?, so
// "12.5.1" reads as 12.5. Values too large for a float64 read as +Inf. It
// returns 0 when no prefix parses.
func leadingFloat(n string) float64 {
	end := 0
	for end < len(n) && isDigit(n[end]) {
		end++
	}
	if end < len(n) && n[end] == '.' {
		end++
		for end < len(n) && isDigit(n[end]) {
			end++
		}
	}
	v, err := strconv.ParseFloat(n[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
