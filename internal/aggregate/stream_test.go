package aggregate

import (
	"testing"
	"time"

	"surveycore/internal/survey"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return ts
}

func respondent(ts time.Time, beliefs ...string) survey.Record {
	return survey.Record{Timestamp: ts, Beliefs: beliefs}
}

func TestBuildStreamStacksLayers(t *testing.T) {
	hour1 := at(t, "2014-08-29T10:00:00Z")
	table := survey.Table{Records: []survey.Record{
		respondent(at(t, "2014-08-29T09:10:00Z"), "Christian"),
		respondent(at(t, "2014-08-29T09:40:00Z"), "Atheist"),
		respondent(at(t, "2014-08-29T09:59:59Z"), "Atheist"),
		respondent(at(t, "2014-08-29T10:30:00Z"), "Hindu"),
	}}

	stream := BuildStream(table)
	if stream.CountMax != 200 {
		t.Fatalf("count domain ceiling must stay fixed at 200, got %d", stream.CountMax)
	}
	if len(stream.Layers) != 2 {
		t.Fatalf("expected two layers, got %d", len(stream.Layers))
	}
	base, top := stream.Layers[0], stream.Layers[1]
	if base.Group != GroupReligious || top.Group != GroupSecular {
		t.Fatalf("unexpected layer order %s/%s", base.Group, top.Group)
	}

	// 09:10-09:59 all ceil to 10:00; 10:30 ceils to 11:00.
	if len(base.Points) != 2 {
		t.Fatalf("expected religious buckets at both hours, got %+v", base.Points)
	}
	if !base.Points[0].Hour.Equal(hour1) || base.Points[0].Floor != 0 || base.Points[0].Ceil != 1 {
		t.Fatalf("unexpected religious bucket %+v", base.Points[0])
	}
	if len(top.Points) != 1 {
		t.Fatalf("expected one secular bucket, got %+v", top.Points)
	}
	// Secular floor joins the religious ceiling on the shared hour key.
	if top.Points[0].Floor != 1 || top.Points[0].Ceil != 3 {
		t.Fatalf("secular layer not stacked: %+v", top.Points[0])
	}

	if !stream.TimeMin.Equal(hour1) || !stream.TimeMax.Equal(at(t, "2014-08-29T11:00:00Z")) {
		t.Fatalf("unexpected time domain [%v, %v]", stream.TimeMin, stream.TimeMax)
	}
}

func TestBuildStreamExactHourBoundaryStaysPut(t *testing.T) {
	boundary := at(t, "2014-08-29T10:00:00Z")
	stream := BuildStream(survey.Table{Records: []survey.Record{respondent(boundary, "Pagan")}})
	if !stream.Layers[0].Points[0].Hour.Equal(boundary) {
		t.Fatalf("exact hour boundary must not round up, got %v", stream.Layers[0].Points[0].Hour)
	}
}

func TestBuildStreamSkipsSentinelTimestamps(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		respondent(time.Time{}, "Christian"),
		respondent(at(t, "2014-08-29T10:30:00Z"), "Christian"),
	}}
	stream := BuildStream(table)
	total := 0
	for _, layer := range stream.Layers {
		for _, p := range layer.Points {
			total += p.Ceil - p.Floor
		}
	}
	if total != 1 {
		t.Fatalf("sentinel timestamps must be excluded, counted %d", total)
	}
}

func TestBuildStreamEmptyTable(t *testing.T) {
	stream := BuildStream(survey.Table{})
	if len(stream.Layers) != 0 {
		t.Fatalf("empty table should yield no layers, got %+v", stream.Layers)
	}
	if !stream.TimeMin.IsZero() || !stream.TimeMax.IsZero() {
		t.Fatalf("empty table should have an empty time domain")
	}
}

// Hours with zero respondents are absent from the layers, not zero-filled.
func TestBuildStreamOmitsEmptyHours(t *testing.T) {
	table := survey.Table{Records: []survey.Record{
		respondent(at(t, "2014-08-29T09:30:00Z"), "Christian"),
		respondent(at(t, "2014-08-29T14:30:00Z"), "Christian"),
	}}
	stream := BuildStream(table)
	if got := len(stream.Layers[0].Points); got != 2 {
		t.Fatalf("expected only the two observed buckets, got %d", got)
	}
}
