package report

import "html/template"

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #0a0a0f; color: #e5e7eb; font: 14px/1.4 ui-monospace, Menlo, Consolas, monospace; margin: 24px; }
h1 { color: #ff2e97; font-size: 18px; margin: 0 0 4px; }
.meta { color: #9ca3af; margin-bottom: 16px; }
.err { color: #ff0055; }
table { border-collapse: collapse; }
th, td { border-bottom: 1px solid #2a2a4a; padding: 6px 10px; text-align: left; vertical-align: middle; }
th { color: #ff2e97; }
tr.hung td { color: #ffaa00; }
tr.disabled td { opacity: .45; }
.cell { display: flex; align-items: center; gap: 6px; }
.spark { display: block; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
updated {{.Header.Updated}} &middot; version {{.Header.Version}} &middot; net {{.Header.NetMode}}{{with .Header.NetError}} <span class="err">({{.}})</span>{{end}} &middot; {{.Samples}} samples &middot; generated {{.Generated}}
</div>
<table>
<thead>
<tr><th></th><th>Name</th><th>Type</th><th>Status</th><th>PID</th><th>Uptime</th><th>CPU</th><th>GPU</th><th>MEM</th><th>NET {{.Header.Unit}}/s</th><th>IO {{.Header.Unit}}/s</th></tr>
</thead>
<tbody>
{{- range .Entities}}
<tr class="{{if .Disabled}}disabled{{else if .Hung}}hung{{end}}">
<td>{{.Icon}}</td><td>{{.Name}}{{if .Hung}} (hung){{end}}</td><td>{{.Type}}</td><td>{{.Status}}</td><td>{{.Pid}}</td><td>{{.Uptime}}</td>
{{- range .Channels}}
<td title="{{.Detail}}"><div class="cell">{{.SVG}}<span style="{{.Style}}">{{.Label}}</span></div></td>
{{- end}}
</tr>
{{- else}}
<tr><td colspan="11">No processes reported</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))
