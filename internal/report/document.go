package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mattslade/ai-scorecard/internal/questionnaire"
)

// BuildDocument produces the final HTML for the renderer. Strict runs pass
// the validated narrative through untouched; lenient runs convert the
// narrative from markdown and wrap it in the scorecard shell together with
// a table of the raw responses.
func BuildDocument(narrative string, strict bool, set *questionnaire.Set, as questionnaire.AnswerSet) (string, error) {
	if strict {
		return narrative, nil
	}

	var summary strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(narrative), &summary); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	var rows strings.Builder
	for _, id := range as.AnsweredIDs(set) {
		label := id
		if q, ok := set.Lookup(id); ok {
			label = q.Text
		}
		rows.WriteString("<tr><th>" + html.EscapeString(label) + "</th><td>" +
			html.EscapeString(as.Values[id].Display()) + "</td></tr>")
	}

	return "<!doctype html><html><head><meta charset='utf-8'><title>AI Readiness Scorecard</title>" +
		"<style>" +
		"html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;} " +
		"body{font-family:Arial,sans-serif;padding:2rem;} " +
		"h1{color:" + BrandColor + ";} " +
		"table{width:100%;border-collapse:collapse;margin-top:2rem;} " +
		"td,th{border:1px solid #ddd;padding:.5rem;} " +
		"th{background:#f3f4f6;text-align:left;} " +
		"@media print{ @page{size:A4;margin:12mm;} body{padding:0;} }" +
		"</style></head><body>" +
		"<h1>AI Readiness Scorecard</h1>" +
		"<h2>Executive Summary</h2>" +
		"<div class='summary'>" + summary.String() + "</div>" +
		"<h2>Raw Responses</h2>" +
		"<table>" + rows.String() + "</table>" +
		"</body></html>", nil
}
