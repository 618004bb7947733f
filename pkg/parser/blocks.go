package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/helmcode/nifty-ai/pkg/model"
)

const (
	heading2Marker  = "##"
	heading3Marker  = "###"
	bulletMarker    = "* "
	enDashMarker    = "– "
	separatorMarker = "---"
)

// blockBuilder accumulates render blocks line by line.
type blockBuilder struct {
	blocks    []model.RenderBlock
	tableRows [][]string
}

// FormatBlocks turns report text into an ordered sequence of render blocks.
//
// Lines that start and end with a pipe are collected into a table until the
// first non-table line. Every other line becomes a heading, list item,
// paragraph or line break. Runs of blank lines collapse into one line break,
// and a line break is never the first block.
func FormatBlocks(text string) []model.RenderBlock {
	b := &blockBuilder{blocks: []model.RenderBlock{}}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if isTableLine(line) {
			b.tableRows = append(b.tableRows, splitTableRow(line))
			continue
		}
		b.flushTable()
		b.addLine(line)
	}
	b.flushTable()

	return b.blocks
}

func (b *blockBuilder) addLine(line string) {
	switch {
	case strings.HasPrefix(line, heading3Marker):
		b.emit(model.RenderBlock{
			Kind:  model.BlockHeading3,
			Spans: Highlight(strings.TrimSpace(strings.TrimPrefix(line, heading3Marker))),
		})
	case strings.HasPrefix(line, heading2Marker):
		b.emit(model.RenderBlock{
			Kind:  model.BlockHeading2,
			Spans: Highlight(strings.TrimSpace(strings.TrimPrefix(line, heading2Marker))),
		})
	case strings.HasPrefix(line, bulletMarker):
		b.emit(model.RenderBlock{Kind: model.BlockListItem, Spans: Highlight(line[len(bulletMarker):])})
	case strings.HasPrefix(line, enDashMarker):
		b.emit(model.RenderBlock{Kind: model.BlockListItem, Spans: Highlight(line[len(enDashMarker):])})
	case line == "":
		if len(b.blocks) > 0 && b.lastKind() != model.BlockLineBreak {
			b.emit(model.RenderBlock{Kind: model.BlockLineBreak})
		}
	default:
		if number, rest, ok := cutOrderedMarker(line); ok {
			b.emit(model.RenderBlock{
				Kind:    model.BlockListItem,
				Ordered: true,
				Number:  number,
				Spans:   Highlight(rest),
			})
			return
		}
		b.emit(model.RenderBlock{Kind: model.BlockParagraph, Spans: Highlight(line)})
	}
}

func (b *blockBuilder) emit(block model.RenderBlock) {
	b.blocks = append(b.blocks, block)
}

func (b *blockBuilder) lastKind() model.BlockKind {
	return b.blocks[len(b.blocks)-1].Kind
}

// flushTable emits the pending table rows as one table block. The first row
// is the header; later rows whose raw cells contain "---" are separators.
func (b *blockBuilder) flushTable() {
	if len(b.tableRows) == 0 {
		return
	}

	header := trimCells(b.tableRows[0])
	rows := [][]string{}
	for _, row := range b.tableRows[1:] {
		if strings.Contains(strings.Join(row, ""), separatorMarker) {
			continue
		}
		rows = append(rows, trimCells(row))
	}

	b.emit(model.RenderBlock{Kind: model.BlockTable, Header: header, Rows: rows})
	b.tableRows = nil
}

func isTableLine(line string) bool {
	return line != "" && line[0] == '|' && line[len(line)-1] == '|'
}

func splitTableRow(line string) []string {
	inner := ""
	if len(line) >= 2 {
		inner = line[1 : len(line)-1]
	}
	return strings.Split(inner, "|")
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// cutOrderedMarker strips a leading "<digits>.<space>" list marker.
func cutOrderedMarker(line string) (int, string, bool) {
	i := 0
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return 0, "", false
	}
	r, size := utf8.DecodeRuneInString(line[i+1:])
	if size == 0 || !unicode.IsSpace(r) {
		return 0, "", false
	}
	number, err := strconv.Atoi(line[:i])
	if err != nil {
		number = 0
	}
	return number, line[i+1+size:], true
}

// Markdown writes blocks back out as report text. Feeding the result to
// FormatBlocks yields the same blocks.
func Markdown(blocks []model.RenderBlock) string {
	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		switch block.Kind {
		case model.BlockHeading2:
			lines = append(lines, heading2Marker+" "+spansMarkdown(block.Spans))
		case model.BlockHeading3:
			lines = append(lines, heading3Marker+" "+spansMarkdown(block.Spans))
		case model.BlockListItem:
			if block.Ordered {
				lines = append(lines, strconv.Itoa(block.Number)+". "+spansMarkdown(block.Spans))
			} else {
				lines = append(lines, bulletMarker+spansMarkdown(block.Spans))
			}
		case model.BlockLineBreak:
			lines = append(lines, "")
		case model.BlockTable:
			lines = append(lines, tableRowMarkdown(block.Header))
			sep := make([]string, len(block.Header))
			for i := range sep {
				sep[i] = separatorMarker
			}
			lines = append(lines, "|"+strings.Join(sep, "|")+"|")
			for _, row := range block.Rows {
				lines = append(lines, tableRowMarkdown(row))
			}
		default:
			lines = append(lines, spansMarkdown(block.Spans))
		}
	}
	return strings.Join(lines, "\n")
}

func spansMarkdown(spans []model.InlineSpan) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Kind == model.SpanBold {
			sb.WriteString(boldMarker + s.Text + boldMarker)
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func tableRowMarkdown(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
