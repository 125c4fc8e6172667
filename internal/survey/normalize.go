package survey

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"surveycore/internal/schema"
)

// TimestampLayout is the fixed source format: slash-separated date, twelve
// hour clock with AM/PM marker, then the export's fixed timezone abbreviation.
const TimestampLayout = "2006/01/02 3:04:05 PM MST"

var multiSplit = regexp.MustCompile(`[;,]`)

// SplitMulti splits a delimited multi-select answer on ';' or ','. No
// trimming and no dedup: sub-item whitespace is preserved as-is and repeated
// selections are kept, so splitting a single-item value is a no-op wrap.
func SplitMulti(value string) []string {
	return multiSplit.Split(value, -1)
}

// ParseLikert parses a statement answer. Blank, "0" and non-numeric input all
// yield the absent value; anything else in 1..5 yields a present score.
// Out-of-range numerics are also absent rather than clamped.
func ParseLikert(value string) Likert {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 5 {
		return Likert{}
	}
	return Likert{Score: n, Valid: true}
}

// ParseYears parses a non-negative integer answer, absent on blank or
// unparseable input.
func ParseYears(value string) Years {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return Years{}
	}
	return Years{N: n, Valid: true}
}

// ParseLang normalizes a favorite-language answer: lowercase, trim, then
// match the ordered alias list front to back, first match winning. When no
// alias matches the lowercased, trimmed input passes through verbatim.
func ParseLang(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	for _, alias := range schema.LangAliases {
		if alias.Pattern.MatchString(cleaned) {
			return alias.Tag
		}
	}
	return cleaned
}

// ParseTimestamp parses an arrival timestamp with the fixed layout. The zero
// time is the sentinel for unparseable input; no error surfaces.
func ParseTimestamp(value string) time.Time {
	ts, err := time.Parse(TimestampLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Normalize converts one raw export row into a typed Record. It is pure: the
// input map is not modified and the returned record shares no storage with
// it. Malformed values degrade to absent/sentinel fields, never an error.
func Normalize(raw Raw) Record {
	rec := Record{
		Timestamp:  ParseTimestamp(raw[schema.Question(schema.FieldTimestamp)]),
		Beliefs:    SplitMulti(raw[schema.Question(schema.FieldBeliefs)]),
		WorkLangs:  SplitMulti(raw[schema.Question(schema.FieldWorkLangs)]),
		Statements: make(map[string]Likert, len(schema.Statements)),
		ProgYears:  ParseYears(raw[schema.Question(schema.FieldProgYears)]),
		WorkYears:  ParseYears(raw[schema.Question(schema.FieldWorkYears)]),
		FavLang:    ParseLang(raw[schema.Question(schema.FieldFavLang)]),
		Feedback:   raw[schema.Question(schema.FieldFeedback)],
	}
	for _, key := range schema.Statements {
		rec.Statements[key] = ParseLikert(raw[schema.Question(key)])
	}
	return rec
}

// NormalizeAll materializes the typed table from raw rows in input order.
func NormalizeAll(raws []Raw) Table {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}
	return Table{Records: records}
}
