package aggregate

import (
	"sort"

	"surveycore/internal/survey"
)

// Opinion bin indices within a breakdown tuple.
const (
	BinDisagree = 0
	BinNeutral  = 1
	BinAgree    = 2
)

// MinLanguageTotal is the low-sample suppression threshold: a language key
// survives only when its total opinion count exceeds this.
const MinLanguageTotal = 3

// LanguageBreakdown is one cross-tab row: per-language opinion counts and
// the in-place normalized fractions (summing to 1 over the three bins).
type LanguageBreakdown struct {
	Language  string     `json:"language"`
	Counts    [3]int     `json:"counts"`
	Fractions [3]float64 `json:"fractions"`
	Total     int        `json:"total"`
}

// CrossTab correlates one statement with the favorite-language field.
// Rows without an opinion on the statement (blank, 0, or unparseable) are
// excluded up front; surviving rows bucket into disagree (<3), neutral (==3)
// and agree (>3) per normalized language. Languages with total count at or
// below MinLanguageTotal are dropped, the rest are normalized to fractions
// and sorted descending by agree fraction with stable ties.
func CrossTab(table survey.Table, statementKey string) []LanguageBreakdown {
	hasOpinion := survey.HasOpinion(statementKey)

	counts := map[string]*[3]int{}
	order := []string{}
	for _, rec := range table.Records {
		if !hasOpinion(rec) {
			continue
		}
		bins, ok := counts[rec.FavLang]
		if !ok {
			bins = &[3]int{}
			counts[rec.FavLang] = bins
			order = append(order, rec.FavLang)
		}
		score := rec.Statements[statementKey].Score
		switch {
		case score < 3:
			bins[BinDisagree]++
		case score == 3:
			bins[BinNeutral]++
		default:
			bins[BinAgree]++
		}
	}

	out := make([]LanguageBreakdown, 0, len(order))
	for _, lang := range order {
		bins := counts[lang]
		total := bins[BinDisagree] + bins[BinNeutral] + bins[BinAgree]
		if total <= MinLanguageTotal {
			continue
		}
		row := LanguageBreakdown{Language: lang, Counts: *bins, Total: total}
		for i, n := range bins {
			row.Fractions[i] = float64(n) / float64(total)
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fractions[BinAgree] > out[j].Fractions[BinAgree]
	})
	return out
}
