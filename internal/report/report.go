// Package report renders analysis bundles as HTML with gomponents.
package report

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/churnscope/internal/pipeline"
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

const css = `body{font-family:Inter,Helvetica,Arial,sans-serif;margin:2rem;color:#1f2328}
table{border-collapse:collapse;margin:1rem 0;font-size:.85rem}
th,td{border:1px solid #d0d7de;padding:.25rem .5rem;text-align:right}
th{background:#f6f8fa}
.stats{display:flex;gap:2rem;align-items:flex-start;flex-wrap:wrap}
.left td{text-align:left}
.notice{background:#ddf4ff;padding:.5rem 1rem}
.error{background:#ffebe9;padding:.5rem 1rem}
figure{margin:1.5rem 0}
figure img{max-width:100%}`

// Render writes node to w.
func Render(w io.Writer, node gomponents.Node) error {
	return node.Render(w)
}

func page(title string, body ...gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | churnscope")),
			html.StyleEl(gomponents.Raw(css)),
		),
		html.Body(gomponents.Group(body)),
	)
}

// Table renders a string table; Index, when present, becomes the leading header column.
func Table(t pipeline.Table, caption string) gomponents.Node {
	head := []gomponents.Node{}
	if len(t.Index) > 0 {
		head = append(head, html.Th())
	}
	for _, c := range t.Columns {
		head = append(head, html.Th(gomponents.Text(c)))
	}
	rows := make([]gomponents.Node, 0, len(t.Rows))
	for i, r := range t.Rows {
		cells := []gomponents.Node{}
		if i < len(t.Index) {
			cells = append(cells, html.Th(gomponents.Text(t.Index[i])))
		}
		for _, v := range r {
			cells = append(cells, html.Td(gomponents.Text(v)))
		}
		rows = append(rows, html.Tr(gomponents.Group(cells)))
	}
	return html.Table(
		gomponents.If(caption != "", html.Caption(gomponents.Text(caption))),
		html.THead(html.Tr(gomponents.Group(head))),
		html.TBody(gomponents.Group(rows)),
	)
}

// StatsTables renders the describe table followed by the dataset preview.
func StatsTables(t pipeline.StatsTables) gomponents.Node {
	return html.Div(
		html.Class("stats-tables"),
		Table(t.Describe, "Descriptive statistics"),
		Table(t.Head, "First rows"),
	)
}

// StatsLeft renders the dataset-level counts.
func StatsLeft(pairs []pipeline.Pair) gomponents.Node {
	rows := make([]gomponents.Node, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, html.Tr(html.Th(gomponents.Text(p.Label)), html.Td(gomponents.Text(p.Value))))
	}
	return html.Table(html.Class("left"), html.TBody(gomponents.Group(rows)))
}

// Page renders the full analysis view of a bundle.
func Page(b *pipeline.ResultBundle) gomponents.Node {
	target := "none"
	if b.ResolvedTarget != nil {
		target = *b.ResolvedTarget
	}
	body := []gomponents.Node{
		html.H1(gomponents.Text("Analysis of " + b.Source)),
		html.P(html.Small(gomponents.Text("id " + b.ID))),
	}
	if b.Notice != "" {
		body = append(body, html.P(html.Class("notice"), gomponents.Text(b.Notice)))
	}
	for _, is := range b.Errors {
		msg := is.Message
		if is.Artifact != "" {
			msg = fmt.Sprintf("%s (%s): %s", is.Artifact, is.Kind, is.Message)
		}
		body = append(body, html.P(html.Class("error"), gomponents.Text(msg)))
	}
	body = append(body,
		html.H2(gomponents.Text("Statistics")),
		html.Div(html.Class("stats"), StatsLeft(b.StatsLeft), StatsTables(b.StatsTables)),
		html.P(gomponents.Text("Target column: "+target)),
		html.H2(gomponents.Text("Charts")),
	)
	for _, a := range b.Artifacts() {
		body = append(body, html.Figure(
			html.Img(html.Src(a.DataURI()), html.Alt(a.Name)),
			html.FigCaption(gomponents.Text(a.Name)),
		))
	}
	if len(b.Missing) > 0 {
		items := make([]gomponents.Node, 0, len(b.Missing))
		for _, m := range b.Missing {
			items = append(items, html.Li(gomponents.Text(m)))
		}
		body = append(body, html.H3(gomponents.Text("Not rendered")), html.Ul(gomponents.Group(items)))
	}
	body = append(body, html.P(html.A(html.Href("/"), gomponents.Text("Analyze another dataset"))))
	return page(b.Source, body...)
}

// UploadPage renders the dataset upload form and the sample dataset shortcuts.
func UploadPage(samples []string, limitMB int, errMsg string) gomponents.Node {
	body := []gomponents.Node{html.H1(gomponents.Text("churnscope"))}
	if errMsg != "" {
		body = append(body, html.P(html.Class("error"), gomponents.Text("Error: "+errMsg)))
	}
	body = append(body,
		html.P(gomponents.Text(fmt.Sprintf("Upload a CSV, TSV or XLSX file (up to %d MB) to profile it.", limitMB))),
		html.Form(
			html.Method("post"),
			html.Action("/analyze?format=html"),
			html.EncType("multipart/form-data"),
			html.Input(html.Type("file"), html.Name("file"), html.Accept(".csv,.tsv,.txt,.xlsx"), html.Required()),
			html.Label(gomponents.Text(" Target column "), html.Input(html.Type("text"), html.Name("target"), html.Placeholder("auto"))),
			html.Button(html.Type("submit"), gomponents.Text("Analyze")),
		),
	)
	if len(samples) > 0 {
		items := make([]gomponents.Node, 0, len(samples))
		for _, s := range samples {
			items = append(items, html.Li(html.Form(
				html.Method("post"),
				html.Action("/analyze?format=html&sample="+s),
				html.Button(html.Type("submit"), gomponents.Text(s)),
			)))
		}
		body = append(body, html.H2(gomponents.Text("Sample datasets")), html.Ul(gomponents.Group(items)))
	}
	return page("Upload", body...)
}

// ErrorPage renders a single user-facing error message.
func ErrorPage(title, message string) gomponents.Node {
	return page(title,
		html.H1(gomponents.Text(title)),
		html.P(html.Class("error"), gomponents.Text(message)),
		html.P(html.A(html.Href("/"), gomponents.Text("Back"))),
	)
}
