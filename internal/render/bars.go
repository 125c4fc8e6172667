package render

import (
	"fmt"
	"html"
	"strings"
)

// barScaleWidth is the pixel width a full 1.0 fraction maps to, so each
// language's three segments together always span the same width.
const barScaleWidth = 600

var binStyles = [3]struct {
	label string
	color string
}{
	{"disagree", "#c0392b"},
	{"neutral", "#95a5a6"},
	{"agree", "#27ae60"},
}

// buildBarTable renders the cross-tab as a normalized horizontal bar table:
// one row per retained language, ordered by agree fraction, each bin drawn
// as a proportionally sized segment with the language label alongside.
func buildBarTable(report Report) []byte {
	buf := &strings.Builder{}
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(report.StatementText))
	buf.WriteString("</title></head><body>")
	fmt.Fprintf(buf, "<h1>%s</h1>", html.EscapeString(report.StatementText))
	buf.WriteString("<table>")
	for _, row := range report.Breakdown {
		buf.WriteString("<tr><td>")
		buf.WriteString(html.EscapeString(row.Language))
		buf.WriteString("</td><td>")
		for bin, style := range binStyles {
			width := int(row.Fractions[bin] * barScaleWidth)
			if width == 0 {
				continue
			}
			fmt.Fprintf(buf,
				`<span title="%s %.0f%%" style="display:inline-block;width:%dpx;background:%s">&nbsp;</span>`,
				style.label, row.Fractions[bin]*100, width, style.color)
		}
		buf.WriteString("</td></tr>")
	}
	buf.WriteString("</table></body></html>")
	return []byte(buf.String())
}
