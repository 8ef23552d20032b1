package report

import (
	"html/template"
	"io"
)

var htmlDoc = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:24px}
h1{font-size:16pt}
table{border-collapse:collapse;font-size:8pt;width:100%}
th{background:#3f51b5;color:#fff}
th,td{border:1px solid #ccc;padding:4px;text-align:left}
tr:nth-child(even) td{background:#f5f5f5}
@media print{a{color:#000}}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{if .Link}}<a href="{{.Link}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Columns}}">No data.</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteHTML writes a self-contained, printable HTML document.
func WriteHTML(w io.Writer, rep Report) error {
	return htmlDoc.Execute(w, rep)
}
