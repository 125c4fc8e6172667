package survey

import "surveycore/internal/schema"

// IsReligious reports whether any stated belief is a member of the fixed
// religion set. The test is exact-string and case-sensitive, and beliefs are
// split without trimming, so variant spellings or stray whitespace classify
// the respondent as non-religious. That precision limit is part of the
// contract, not something to paper over here.
func IsReligious(rec Record) bool {
	for _, belief := range rec.Beliefs {
		if _, ok := schema.Religions[belief]; ok {
			return true
		}
	}
	return false
}

// HasModifier reports whether any stated belief is a member of the fixed
// modifier set (qualifiers like Agnostic that are not religions on their own).
func HasModifier(rec Record) bool {
	for _, belief := range rec.Beliefs {
		if _, ok := schema.Modifiers[belief]; ok {
			return true
		}
	}
	return false
}

// HasOpinion returns a predicate that is true iff the respondent gave a
// usable answer to the named statement. Blank, "0" and non-numeric answers
// all normalized to the absent Likert value, so the single Valid check covers
// every "no opinion" case.
func HasOpinion(key string) func(Record) bool {
	return func(rec Record) bool {
		return rec.Statements[key].Valid
	}
}
