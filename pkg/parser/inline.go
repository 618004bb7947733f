package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/helmcode/nifty-ai/pkg/model"
)

const (
	boldMarker = "**"
	rupeeSign  = "₹"
	crorePart  = "cr"
)

// Highlight splits a line into inline spans.
//
// The line is scanned left to right. At each position the matchers are tried
// in priority order: bold, percentage, currency. The first position where any
// matcher succeeds wins and scanning resumes after the match, so a percentage
// inside a bold run belongs to the bold span. Text between matches becomes
// plain spans, verbatim.
func Highlight(line string) []model.InlineSpan {
	var spans []model.InlineSpan
	plainStart := 0

	for i := 0; i < len(line); {
		span, end, ok := matchInline(line, i)
		if !ok {
			i++
			continue
		}
		if i > plainStart {
			spans = append(spans, model.InlineSpan{Kind: model.SpanPlain, Text: line[plainStart:i]})
		}
		spans = append(spans, span)
		i = end
		plainStart = end
	}

	if plainStart < len(line) {
		spans = append(spans, model.InlineSpan{Kind: model.SpanPlain, Text: line[plainStart:]})
	}
	return spans
}

func matchInline(s string, i int) (model.InlineSpan, int, bool) {
	if end, ok := matchBold(s, i); ok {
		return model.InlineSpan{Kind: model.SpanBold, Text: s[i+len(boldMarker) : end-len(boldMarker)]}, end, true
	}
	if end, ok := matchPercentage(s, i); ok {
		return model.InlineSpan{Kind: model.SpanPercentage, Text: s[i:end]}, end, true
	}
	if end, ok := matchCurrency(s, i); ok {
		return model.InlineSpan{Kind: model.SpanCurrency, Text: s[i:end]}, end, true
	}
	return model.InlineSpan{}, 0, false
}

// matchBold matches the shortest **...** run starting at i. The run may not
// cross a line terminator.
func matchBold(s string, i int) (int, bool) {
	if !strings.HasPrefix(s[i:], boldMarker) {
		return 0, false
	}
	body := s[i+len(boldMarker):]
	closing := strings.Index(body, boldMarker)
	if closing < 0 {
		return 0, false
	}
	if strings.ContainsAny(body[:closing], "\n\r\u2028\u2029") {
		return 0, false
	}
	return i + len(boldMarker) + closing + len(boldMarker), true
}

// matchPercentage matches d{1,3}(,ddd)*(.d+)?% at i. The grammar is checked
// while scanning, so a failed attempt stops at the first character that
// cannot continue the token.
func matchPercentage(s string, i int) (int, bool) {
	j := i
	for j < len(s) && j-i < 3 && isDigit(s[j]) {
		j++
	}
	if j == i {
		return 0, false
	}
	for j+3 < len(s) && s[j] == ',' && isDigit(s[j+1]) && isDigit(s[j+2]) && isDigit(s[j+3]) {
		j += 4
	}
	if j < len(s) && s[j] == '.' {
		k := j + 1
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k == j+1 {
			return 0, false
		}
		j = k
	}
	if j >= len(s) || s[j] != '%' {
		return 0, false
	}
	return j + 1, true
}

// matchCurrency matches ₹, one optional space, [0-9,]+, an optional .d+
// fraction and an optional "cr" suffix that may be preceded by one space.
func matchCurrency(s string, i int) (int, bool) {
	if !strings.HasPrefix(s[i:], rupeeSign) {
		return 0, false
	}
	j := i + len(rupeeSign)
	if r, size := utf8.DecodeRuneInString(s[j:]); size > 0 && unicode.IsSpace(r) {
		if j+size < len(s) && isDigitOrComma(s[j+size]) {
			j += size
		}
	}

	start := j
	for j < len(s) && isDigitOrComma(s[j]) {
		j++
	}
	if j == start {
		return 0, false
	}

	if j+1 < len(s) && s[j] == '.' && isDigit(s[j+1]) {
		j += 2
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}

	if r, size := utf8.DecodeRuneInString(s[j:]); size > 0 && unicode.IsSpace(r) && strings.HasPrefix(s[j+size:], crorePart) {
		j += size + len(crorePart)
	} else if strings.HasPrefix(s[j:], crorePart) {
		j += len(crorePart)
	}
	return j, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigitOrComma(c byte) bool { return isDigit(c) || c == ',' }
