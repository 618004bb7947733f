package model

import (
	"fmt"
	"strings"
)

// SpanKind classifies a run of inline text.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanPercentage
	SpanCurrency
)

var spanKindNames = []string{"plain", "bold", "percentage", "currency"}

func (k SpanKind) String() string {
	if int(k) < len(spanKindNames) && k >= 0 {
		return spanKindNames[k]
	}
	return fmt.Sprintf("SpanKind(%d)", int(k))
}

func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SpanKind) UnmarshalText(b []byte) error {
	for i, name := range spanKindNames {
		if name == string(b) {
			*k = SpanKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown span kind %q", string(b))
}

// InlineSpan is a run of literal text. Bold text has its ** markers stripped.
type InlineSpan struct {
	Kind SpanKind `json:"kind" yaml:"kind"`
	Text string   `json:"text" yaml:"text"`
}

// BlockKind tags a RenderBlock.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading2
	BlockHeading3
	BlockListItem
	BlockLineBreak
	BlockTable
)

var blockKindNames = []string{"paragraph", "heading2", "heading3", "list_item", "line_break", "table"}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) && k >= 0 {
		return blockKindNames[k]
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BlockKind) UnmarshalText(b []byte) error {
	for i, name := range blockKindNames {
		if name == string(b) {
			*k = BlockKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", string(b))
}

// RenderBlock is one structural unit of formatted output.
//
// Headings, list items and paragraphs carry Spans. Ordered list items keep the
// number they were written with. Tables carry trimmed cell text; the separator
// row is never part of Rows.
type RenderBlock struct {
	Kind    BlockKind    `json:"kind" yaml:"kind"`
	Spans   []InlineSpan `json:"spans,omitempty" yaml:"spans,omitempty"`
	Ordered bool         `json:"ordered,omitempty" yaml:"ordered,omitempty"`
	Number  int          `json:"number,omitempty" yaml:"number,omitempty"`
	Header  []string     `json:"header,omitempty" yaml:"header,omitempty"`
	Rows    [][]string   `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// PlainText joins the literal text of the block's spans.
func (b RenderBlock) PlainText() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
