package formatter

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/helmcode/nifty-ai/pkg/model"
	"github.com/helmcode/nifty-ai/pkg/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").Funcs(template.FuncMap{
		"highlight":  parser.Highlight,
		"barStyle":   barStyle,
		"tone":       Tone,
		"panelTitle": panelTitle,
	}).ParseFS(templateFS, "templates/page.html"),
)

// PageData is the input of the HTML page. Doc and Error are both optional:
// with neither set the page only shows the generate form.
type PageData struct {
	Doc   *model.Document
	Error string
	// Action is the form target of the generate button. Empty hides the form.
	Action string
	// Busy disables the generate button while a fetch is outstanding.
	Busy bool
}

// RenderPage writes a complete HTML page.
func RenderPage(w io.Writer, data PageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderReportPage writes a standalone HTML page for doc.
func RenderReportPage(w io.Writer, doc *model.Document) error {
	return RenderPage(w, PageData{Doc: doc})
}

func barStyle(value float64) template.CSS {
	return template.CSS(fmt.Sprintf("width: %g%%", BarWidth(value)))
}

func panelTitle() string {
	return ProbabilityPanelTitle
}
