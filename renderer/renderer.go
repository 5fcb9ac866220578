// Package renderer renders portfolio reports as markdown.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// reportSections are the templates of the report, in order. Sections that
// render to nothing are skipped.
var reportSections = []string{
	"title.md",
	"summary.md",
	"holdings.md",
	"deviations.md",
	"fx.md",
}

var funcs = template.FuncMap{
	"cell": cell,
	"bar":  bar,
}

// RenderReport renders the Report struct to a markdown string.
func RenderReport(r *Report) string {
	tmpl, err := template.New("report").Funcs(funcs).ParseFS(templates, "templates/*.md")
	if err != nil {
		return fmt.Sprintf("error parsing templates: %v", err)
	}

	var b strings.Builder
	for _, section := range reportSections {
		ConditionalBlock(&b, func(w io.Writer) bool {
			var buf bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buf, section, r); err != nil {
				fmt.Fprintf(w, "error executing template %q: %v\n\n", section, err)
				return true
			}
			content := strings.TrimSpace(buf.String())
			if content == "" {
				return false
			}
			fmt.Fprintf(w, "%s\n\n", content)
			return true
		})
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
