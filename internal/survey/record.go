// Package survey defines the typed respondent record, the normalization from
// raw export rows, and the classification predicates used by the aggregators.
package survey

import "time"

// Raw is one row of the source export: full question text mapped to the
// verbatim answer string. Raw values exist only as normalization input.
type Raw map[string]string

// Likert holds a statement answer on the 1-5 scale. The zero value means "no
// usable answer": the respondent left it blank, answered 0 (no response), or
// wrote something non-numeric. Callers must check Valid before reading Score;
// predicates treat absent values as "no opinion".
type Likert struct {
	Score int
	Valid bool
}

// Years holds a non-negative integer answer (experience questions). Absent
// when blank or unparseable.
type Years struct {
	N     int
	Valid bool
}

// Record is one respondent's normalized answers. Records are immutable after
// normalization; both aggregators read the same table and must not mutate it.
type Record struct {
	// Timestamp is the parsed arrival time. The zero time is the sentinel
	// for an unparseable source value.
	Timestamp time.Time

	// Beliefs and WorkLangs are split from the delimited source value on
	// ';' or ','. Sub-item whitespace is preserved and duplicates are kept.
	Beliefs   []string
	WorkLangs []string

	// Statements maps statement field key to the parsed Likert answer.
	// Every statement key is present in the map even when unanswered.
	Statements map[string]Likert

	ProgYears Years
	WorkYears Years

	// FavLang is the normalized favorite language tag (lowercased, trimmed,
	// alias-matched; verbatim pass-through when no alias matches).
	FavLang string

	// Feedback is free text, untouched.
	Feedback string
}

// Table is the materialized typed table: produced once per run, then read by
// the aggregators without mutation.
type Table struct {
	Records []Record
}

// Len returns the number of respondents in the table.
func (t Table) Len() int { return len(t.Records) }
