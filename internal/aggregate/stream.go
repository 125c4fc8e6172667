// Package aggregate implements the two read-only reducers over the typed
// survey table: the time/religiosity response stream and the belief ×
// favorite-language cross-tabulation. Neither reducer mutates the table.
package aggregate

import (
	"sort"
	"time"

	"surveycore/internal/survey"
)

// Stream group keys. The religious layer is the base of the stack; the
// secular layer floors on top of it per matching hour.
const (
	GroupReligious = "religious"
	GroupSecular   = "secular"
)

// CountCeiling is the fixed upper bound of the count axis. The axis is not
// auto-scaled to the observed maximum; an hour with more combined
// respondents than this will visually clip.
const CountCeiling = 200

// StreamPoint is one stacked bucket: the hour-ceiling key plus the vertical
// extent of the layer at that hour.
type StreamPoint struct {
	Hour  time.Time `json:"hour"`
	Floor int       `json:"floor"`
	Ceil  int       `json:"ceil"`
}

// StreamLayer is one filled shape of the stacked chart.
type StreamLayer struct {
	Group  string        `json:"group"`
	Points []StreamPoint `json:"points"`
}

// Stream is the stacked response-arrival histogram.
type Stream struct {
	Layers []StreamLayer `json:"layers"`
	// TimeMin/TimeMax span the observed hour keys across both layers and
	// feed the horizontal scale. Zero when no record carried a usable
	// timestamp.
	TimeMin time.Time `json:"time_min"`
	TimeMax time.Time `json:"time_max"`
	// CountMax is the fixed vertical domain ceiling.
	CountMax int `json:"count_max"`
}

// hourCeil rounds a timestamp up to the next hour boundary; exact boundaries
// stay put.
func hourCeil(ts time.Time) time.Time {
	truncated := ts.Truncate(time.Hour)
	if truncated.Equal(ts) {
		return truncated
	}
	return truncated.Add(time.Hour)
}

// BuildStream buckets respondents by religiosity and hour-ceiling of arrival,
// counts per bucket, and stacks the secular layer on the religious one per
// matching hour key. Hours with zero respondents are absent rather than
// zero-filled. Records carrying the unparseable-timestamp sentinel are
// excluded; they have no place on a time axis.
func BuildStream(table survey.Table) Stream {
	counts := map[string]map[time.Time]int{
		GroupReligious: {},
		GroupSecular:   {},
	}
	hours := map[time.Time]struct{}{}
	for _, rec := range table.Records {
		if rec.Timestamp.IsZero() {
			continue
		}
		group := GroupSecular
		if survey.IsReligious(rec) {
			group = GroupReligious
		}
		hour := hourCeil(rec.Timestamp)
		counts[group][hour]++
		hours[hour] = struct{}{}
	}

	stream := Stream{CountMax: CountCeiling}
	if len(hours) == 0 {
		return stream
	}

	ordered := make([]time.Time, 0, len(hours))
	for hour := range hours {
		ordered = append(ordered, hour)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	stream.TimeMin = ordered[0]
	stream.TimeMax = ordered[len(ordered)-1]

	base := StreamLayer{Group: GroupReligious}
	top := StreamLayer{Group: GroupSecular}
	for _, hour := range ordered {
		religious, hasBase := counts[GroupReligious][hour]
		secular, hasTop := counts[GroupSecular][hour]
		if hasBase {
			base.Points = append(base.Points, StreamPoint{Hour: hour, Floor: 0, Ceil: religious})
		}
		if hasTop {
			// The secular floor joins the religious ceiling on the same
			// key; a missing base bucket floors at zero.
			top.Points = append(top.Points, StreamPoint{Hour: hour, Floor: religious, Ceil: religious + secular})
		}
	}
	stream.Layers = []StreamLayer{base, top}
	return stream
}
