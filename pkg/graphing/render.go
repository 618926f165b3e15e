package graphing

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"SystemMonitor/pkg/exporting"
)

// summaryData feeds the summary template.
type summaryData struct {
	exporting.Summary
	Duration time.Duration
}

func renderSummaryHTML(sum exporting.Summary) (string, error) {
	var buf bytes.Buffer
	data := summaryData{Summary: sum, Duration: sum.End.Sub(sum.Start)}
	if err := templates.ExecuteTemplate(&buf, "summary", data); err != nil {
		return "", fmt.Errorf("failed to execute summary template: %w", err)
	}
	return buf.String(), nil
}

func renderStyles() (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "styles", nil); err != nil {
		return "", fmt.Errorf("failed to execute styles template: %w", err)
	}
	return buf.String(), nil
}

// injectHeader places the summary after <body> and the styles before </head>
// of a rendered chart page.
func injectHeader(page string, sum exporting.Summary) (string, error) {
	summary, err := renderSummaryHTML(sum)
	if err != nil {
		return "", err
	}
	styles, err := renderStyles()
	if err != nil {
		return "", err
	}
	page = strings.Replace(page, "<body>", "<body>\n"+summary, 1)
	page = strings.Replace(page, "</head>", styles+"</head>", 1)
	return page, nil
}
