package report

import (
	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/parser"
)

// Build composes the probability panel, the formatted blocks and the sources
// of a fetched report into one render-ready document.
func Build(r *model.AnalysisReport) *model.Document {
	doc := &model.Document{
		Probabilities: parser.ExtractProbabilities(r.Text),
		Blocks:        parser.FormatBlocks(r.Text),
		Sources:       r.Sources,
		Model:         r.Model,
		GeneratedAt:   r.GeneratedAt,
	}
	if doc.Sources == nil {
		doc.Sources = []model.Source{}
	}
	return doc
}

// FromText builds a document for report text that did not come from a fetch.
func FromText(text string) *model.Document {
	return Build(&model.AnalysisReport{Text: text})
}
