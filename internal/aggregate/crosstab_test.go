package aggregate

import (
	"math"
	"testing"

	"surveycore/internal/schema"
	"surveycore/internal/survey"
)

func opinion(lang string, score int) survey.Record {
	rec := survey.Record{FavLang: lang, Statements: map[string]survey.Likert{}}
	if score > 0 {
		rec.Statements[schema.FieldHumanGood] = survey.Likert{Score: score, Valid: true}
	}
	return rec
}

// End-to-end example from the pipeline contract: four respondents on go,
// scores 4/2/3/5 with one no-opinion excluded elsewhere.
func TestCrossTabExample(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		opinion("go", 4),
		opinion("go", 2),
		opinion("go", 3),
		opinion("go", 5),
	}}
	rows := CrossTab(table, schema.FieldHumanGood)
	if len(rows) != 1 {
		t.Fatalf("expected one language row, got %d", len(rows))
	}
	row := rows[0]
	if row.Language != "go" || row.Total != 4 {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.Counts != [3]int{1, 1, 2} {
		t.Fatalf("unexpected counts %v", row.Counts)
	}
	want := [3]float64{0.25, 0.25, 0.5}
	for i := range want {
		if math.Abs(row.Fractions[i]-want[i]) > 1e-9 {
			t.Fatalf("unexpected fractions %v", row.Fractions)
		}
	}
}

func TestCrossTabExcludesNoOpinion(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		opinion("go", 4),
		opinion("go", 4),
		opinion("go", 4),
		opinion("go", 4),
		opinion("go", 0), // no response, excluded before bucketing
	}}
	rows := CrossTab(table, schema.FieldHumanGood)
	if len(rows) != 1 || rows[0].Total != 4 {
		t.Fatalf("no-opinion rows must not count, got %+v", rows)
	}
}

func TestCrossTabSuppressesLowSamples(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		opinion("go", 4), opinion("go", 4), opinion("go", 4), opinion("go", 4),
		opinion("ruby", 5), opinion("ruby", 5), opinion("ruby", 5), // total 3, dropped
	}}
	rows := CrossTab(table, schema.FieldHumanGood)
	if len(rows) != 1 || rows[0].Language != "go" {
		t.Fatalf("languages with total <= 3 must be suppressed, got %+v", rows)
	}
}

func TestCrossTabSortsByAgreeDescending(t *testing.T) {
	records := []survey.Record{}
	// python: 4/4 agree; go: 2/4 agree; c: 0/4 agree.
	for i := 0; i < 4; i++ {
		records = append(records, opinion("python", 5))
	}
	records = append(records, opinion("go", 5), opinion("go", 4), opinion("go", 1), opinion("go", 2))
	for i := 0; i < 4; i++ {
		records = append(records, opinion("c", 1))
	}
	rows := CrossTab(survey.Table{Records: records}, schema.FieldHumanGood)
	if len(rows) != 3 {
		t.Fatalf("expected three languages, got %d", len(rows))
	}
	for i := 0; i < len(rows)-1; i++ {
		if rows[i].Fractions[BinAgree] < rows[i+1].Fractions[BinAgree] {
			t.Fatalf("rows not sorted by agree fraction: %+v", rows)
		}
	}
	if rows[0].Language != "python" || rows[2].Language != "c" {
		t.Fatalf("unexpected order %+v", rows)
	}
}

func TestCrossTabFractionsSumToOne(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		opinion("go", 1), opinion("go", 2), opinion("go", 3),
		opinion("go", 4), opinion("go", 5), opinion("go", 3), opinion("go", 2),
	}}
	rows := CrossTab(table, schema.FieldHumanGood)
	for _, row := range rows {
		sum := row.Fractions[0] + row.Fractions[1] + row.Fractions[2]
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("fractions for %s sum to %g", row.Language, sum)
		}
	}
}

func TestCrossTabDoesNotMutateTable(t *testing.T) {
	rec := opinion("go", 4)
	table := survey.Table{Records: []survey.Record{rec, opinion("go", 2), opinion("go", 3), opinion("go", 5)}}
	_ = CrossTab(table, schema.FieldHumanGood)
	if table.Records[0].Statements[schema.FieldHumanGood].Score != 4 {
		t.Fatalf("aggregation must not mutate the table")
	}
}
