package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSourceTitle is used for citations that arrive without a title.
const DefaultSourceTitle = "Untitled"

// Source is a web reference that grounded the generated report.
type Source struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
}

// Label returns the visible text for a source link.
func (s Source) Label() string {
	if s.Title == "" {
		return s.URI
	}
	return s.Title
}

// AnalysisReport is the result of a single fetch.
type AnalysisReport struct {
	Text        string    `json:"text" yaml:"text"`
	Sources     []Source  `json:"sources" yaml:"sources"`
	Model       string    `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
}

// DedupeSources drops sources without a URI and keeps the first source seen for each URI.
func DedupeSources(sources []Source) []Source {
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" {
			continue
		}
		if _, ok := seen[s.URI]; ok {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Direction is one of the three weekly close scenarios.
type Direction int

const (
	Upside Direction = iota + 1
	Downside
	FlatSideways
)

var directionNames = map[Direction]string{
	Upside:       "Upside",
	Downside:     "Downside",
	FlatSideways: "Flat/Sideways",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection matches a direction label case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	for d, name := range directionNames {
		if strings.EqualFold(s, name) {
			return d, true
		}
	}
	return 0, false
}

func (d Direction) MarshalText() ([]byte, error) {
	if _, ok := directionNames[d]; !ok {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("unknown direction %q", string(b))
	}
	*d = parsed
	return nil
}

// ProbabilityRecord is one row of the probability summary table.
type ProbabilityRecord struct {
	Direction Direction `json:"direction" yaml:"direction"`
	Label     string    `json:"probability" yaml:"probability"`
	Value     float64   `json:"value" yaml:"value"`
}

// Document is the render-ready form of a report.
type Document struct {
	Probabilities []ProbabilityRecord `json:"probabilities" yaml:"probabilities"`
	Blocks        []RenderBlock       `json:"blocks" yaml:"blocks"`
	Sources       []Source            `json:"sources" yaml:"sources"`
	Model         string              `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt   time.Time           `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
}
