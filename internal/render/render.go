// Package render is the presentation adapter: it converts aggregate results
// into report artifacts. The aggregators own the numbers; this package only
// turns them into bytes (JSON, CSV, HTML bar table, SVG and PNG stacked
// area).
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"surveycore/internal/aggregate"
)

// Format identifies a report artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// Formats lists every supported artifact format.
var Formats = []Format{FormatJSON, FormatCSV, FormatHTML, FormatSVG, FormatPNG}

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// ContentType returns the MIME type for a format.
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatHTML:
		return "text/html"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Report bundles everything one run produced, ready for materialization.
type Report struct {
	GeneratedAt   time.Time                     `json:"generated_at"`
	Respondents   int                           `json:"respondents"`
	StatementKey  string                        `json:"statement_key"`
	StatementText string                        `json:"statement_text"`
	Stream        aggregate.Stream              `json:"stream"`
	Breakdown     []aggregate.LanguageBreakdown `json:"breakdown"`
}

// Materialize renders the report in the requested format.
func Materialize(format Format, report Report) ([]byte, error) {
	switch format {
	case FormatJSON:
		payload, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		return payload, nil
	case FormatCSV:
		return buildCSV(report)
	case FormatHTML:
		return buildBarTable(report), nil
	case FormatSVG:
		return buildAreaSVG(report.Stream), nil
	case FormatPNG:
		return buildAreaPNG(report.Stream)
	default:
		return nil, fmt.Errorf("unsupported report format %s", format)
	}
}

// buildCSV tabulates the cross-tab rows: one line per retained language with
// raw counts and normalized fractions.
func buildCSV(report Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	header := []string{"language", "disagree", "neutral", "agree", "disagree_frac", "neutral_frac", "agree_frac", "total"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, row := range report.Breakdown {
		record := []string{
			row.Language,
			strconv.Itoa(row.Counts[aggregate.BinDisagree]),
			strconv.Itoa(row.Counts[aggregate.BinNeutral]),
			strconv.Itoa(row.Counts[aggregate.BinAgree]),
			formatFrac(row.Fractions[aggregate.BinDisagree]),
			formatFrac(row.Fractions[aggregate.BinNeutral]),
			formatFrac(row.Fractions[aggregate.BinAgree]),
			strconv.Itoa(row.Total),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFrac(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
