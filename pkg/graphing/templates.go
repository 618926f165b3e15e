package graphing

import (
	"fmt"
	"html/template"
	"time"

	"SystemMonitor/pkg/utils"
)

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"formatDuration": utils.FormatDuration,
	"pct":            func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var templates = template.Must(template.New("").Funcs(templateFuncs).Parse(`
{{define "styles"}}
<style>
* {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
}
body {
    max-width: 1400px;
    margin: 0 auto;
    padding: 20px;
}
.summary-header {
    border-bottom: 2px solid #333;
    padding-bottom: 10px;
    margin-bottom: 15px;
}
.summary-header h1 {
    margin: 0;
    font-size: 18px;
}
.summary-section {
    margin-bottom: 15px;
    padding: 15px;
    background: #f5f5f5;
    border: 1px solid #ddd;
}
.summary-table {
    width: 100%;
    border-collapse: collapse;
    font-size: 12px;
}
.summary-table td {
    padding: 3px 8px;
    border-bottom: 1px solid #eee;
}
.summary-table td:first-child {
    width: 180px;
    color: #666;
}
.summary-table td:last-child {
    font-family: monospace;
}
.container {
    display: block !important;
    margin: 0 0 10px 0 !important;
    padding: 15px !important;
    background: #f5f5f5 !important;
    border: 1px solid #ddd !important;
}
</style>
{{end}}

{{define "summary"}}
<div class="summary-container">
    <div class="summary-header">
        <h1>System Monitor Report</h1>
    </div>
    <div class="summary-section">
        <table class="summary-table">
            <tr><td>Snapshots</td><td>{{.Count}}</td></tr>
            <tr><td>Sessions</td><td>{{.Sessions}}</td></tr>
            <tr><td>Window</td><td>{{formatTime .Start}} to {{formatTime .End}} ({{formatDuration .Duration}})</td></tr>
            <tr><td>CPU average / peak</td><td>{{pct .CPUAvg}}% / {{pct .CPUMax}}%</td></tr>
            <tr><td>Memory average / peak</td><td>{{pct .MemAvg}}% / {{pct .MemMax}}%</td></tr>
            <tr><td>Network sent / received</td><td>{{pct .SentMB}} MB / {{pct .RecvMB}} MB</td></tr>
        </table>
    </div>
</div>
{{end}}
`))
