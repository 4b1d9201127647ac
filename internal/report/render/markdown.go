package render

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"github.com/smallbiznis/tractionlens/internal/report/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const reportMarkdownTemplate = `# {{.Title}}

*Generated: {{formatTime .GeneratedAt}}*

---

## Company Profile

| Field | Value |
|---|---|
| Annual Revenue | {{cell .Header.AnnualRevenue}} |
| Growth Stage | {{cell .Header.GrowthStage}} |
| Business Model | {{cell .Header.BusinessModel}} |
| Industry | {{cell .Header.Industry}} |

---

## Metrics Diagnosis
{{range .Sections}}
### {{.Pillar}} Metrics

| Metric | Current | Target Range | Status |
|---|---|---|---|
{{range .Rows}}| {{cell .Metric}} | {{cell .Current}} | {{cell .Target}} | {{if .Flagged}}Needs attention{{else}}On target{{end}} |
{{end}}{{range .Flagged}}
#### {{.Metric}}

- Current: {{.Current}}
- Target Range: {{.Target}}
{{if .Recommendations}}
**Recommended Actions**

{{range .Recommendations}}- {{.}}
{{end}}{{else}}
> {{.Notice}}
{{end}}{{if .Resources}}
**Resources**

{{range .Resources}}- [{{.Label}}]({{.URL}})
{{end}}{{end}}{{end}}{{end}}

---

## Next Steps

{{range $i, $step := .NextSteps}}{{inc $i}}. {{$step}}
{{end}}
Follow-up review: {{formatDate .FollowUpDate}}

---

*{{.Framework}} | Report {{.ID}}*
`

const reportHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .report-card {
      background: #ffffff;
      max-width: 860px;
      margin: 0 auto;
      padding: 48px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      margin-bottom: 24px;
    }
    th, td {
      text-align: left;
      padding: 8px 6px;
      border-bottom: 1px solid #e3e8ee;
      font-size: 14px;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
    }
    blockquote {
      margin: 0;
      padding: 8px 16px;
      background: #fef3c7;
      border-left: 3px solid #fcd34d;
    }
  </style>
</head>
<body>
  <div class="report-card">
{{.Body}}
  </div>
</body>
</html>
`

type Renderer struct {
	markdown *template.Template
	page     *htmltemplate.Template
	md       goldmark.Markdown
}

func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"cell":       cell,
		"formatTime": formatTime,
		"formatDate": formatDate,
		"inc":        func(i int) int { return i + 1 },
	}
	return &Renderer{
		markdown: template.Must(template.New("report.md").Funcs(funcs).Parse(reportMarkdownTemplate)),
		page:     htmltemplate.Must(htmltemplate.New("report.html").Parse(reportHTMLTemplate)),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (r *Renderer) Markdown(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.markdown.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HTML converts the Markdown rendering and wraps it in a standalone page.
// Raw HTML in reference data is escaped by goldmark.
func (r *Renderer) HTML(report *domain.Report) ([]byte, error) {
	source, err := r.Markdown(report)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := r.md.Convert(source, &body); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = r.page.Execute(&buf, struct {
		Title string
		Body  htmltemplate.HTML
	}{
		Title: report.Title,
		Body:  htmltemplate.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	return strings.ReplaceAll(value, "\n", " ")
}

func formatTime(value time.Time) string {
	return value.UTC().Format("2006-01-02 15:04")
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}
