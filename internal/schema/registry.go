// Package schema declares the fixed survey schema: the mapping from short
// field keys to the literal question text used as column headers in the
// source export, the field classification sets that drive parsing, and the
// constant lookup tables shared by the aggregation predicates.
//
// Everything in this package is initialized once at load and never mutated.
package schema

import "regexp"

// Field keys. Columns in the raw export are keyed by the full question text;
// the rest of the codebase refers to fields by these short keys.
const (
	FieldTimestamp = "timestamp"
	FieldBeliefs   = "beliefs"
	FieldWorkLangs = "worklangs"
	FieldFavLang   = "favlang"
	FieldProgYears = "progyears"
	FieldWorkYears = "workyears"
	FieldFeedback  = "feedback"

	// Statement fields: Likert-scale questions, integer 0-5, 0 = no answer.
	FieldHumanGood   = "humangood"
	FieldGodReal     = "godreal"
	FieldAfterlife   = "afterlife"
	FieldFreeWill    = "freewill"
	FieldAliens      = "aliens"
	FieldLuckReal    = "luckreal"
	FieldFateSet     = "fateset"
	FieldTechSolves  = "techsolves"
	FieldAIBenefit   = "aibenefit"
	FieldPrivacyGone = "privacygone"
	FieldMoralObj    = "moralobj"
	FieldTrueLove    = "truelove"
	FieldKarma       = "karma"
)

// questions maps short keys to the canonical question text exactly as it
// appears in the export header row.
var questions = map[string]string{
	FieldTimestamp: "Timestamp",
	FieldBeliefs:   "Which of the following describe your beliefs?",
	FieldWorkLangs: "Which programming languages do you use at work?",
	FieldFavLang:   "What is your favorite programming language?",
	FieldProgYears: "How many years have you been programming?",
	FieldWorkYears: "How many years have you been programming professionally?",
	FieldFeedback:  "Anything else you would like to tell us?",

	FieldHumanGood:   "I believe humans are fundamentally good",
	FieldGodReal:     "I believe a god or gods exist",
	FieldAfterlife:   "I believe in life after death",
	FieldFreeWill:    "I believe humans have free will",
	FieldAliens:      "I believe intelligent alien life exists",
	FieldLuckReal:    "I believe luck is a real force",
	FieldFateSet:     "I believe the future is predetermined",
	FieldTechSolves:  "I believe technology can solve most human problems",
	FieldAIBenefit:   "I believe artificial intelligence will benefit society",
	FieldPrivacyGone: "I believe privacy is already a lost cause",
	FieldMoralObj:    "I believe morality is objective",
	FieldTrueLove:    "I believe everyone has one true love",
	FieldKarma:       "I believe in karma",
}

// Statements lists the statement field keys in survey order.
var Statements = []string{
	FieldHumanGood,
	FieldGodReal,
	FieldAfterlife,
	FieldFreeWill,
	FieldAliens,
	FieldLuckReal,
	FieldFateSet,
	FieldTechSolves,
	FieldAIBenefit,
	FieldPrivacyGone,
	FieldMoralObj,
	FieldTrueLove,
	FieldKarma,
}

// MultiValued holds the keys of fields whose answers are delimiter-separated
// selections and must always be list-typed after normalization.
var MultiValued = map[string]struct{}{
	FieldBeliefs:   {},
	FieldWorkLangs: {},
}

// OtherNumeric holds the non-statement numeric fields.
var OtherNumeric = map[string]struct{}{
	FieldProgYears: {},
	FieldWorkYears: {},
}

var statements = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Statements))
	for _, key := range Statements {
		set[key] = struct{}{}
	}
	return set
}()

// Question returns the canonical question text for a short field key.
// Unknown keys return the empty string.
func Question(key string) string {
	return questions[key]
}

// IsStatement reports whether key names a Likert statement field.
func IsStatement(key string) bool {
	_, ok := statements[key]
	return ok
}

// IsMultiValued reports whether key names a delimiter-separated field.
func IsMultiValued(key string) bool {
	_, ok := MultiValued[key]
	return ok
}

// IsNumeric reports whether key is parsed as a number (statement or other).
func IsNumeric(key string) bool {
	if IsStatement(key) {
		return true
	}
	_, ok := OtherNumeric[key]
	return ok
}

// Religions is the fixed set of belief labels that classify a respondent as
// religious. Membership tests are exact-string and case-sensitive; variant
// spellings do not match.
var Religions = map[string]struct{}{
	"Christian": {},
	"Buddhist":  {},
	"Jewish":    {},
	"Muslim":    {},
	"Pagan":     {},
	"Hindu":     {},
}

// Modifiers is the fixed set of belief qualifiers that are not religions on
// their own. Lookup-only, like Religions.
var Modifiers = map[string]struct{}{
	"Agnostic":  {},
	"Atheist":   {},
	"Secular":   {},
	"Spiritual": {},
	"Lapsed":    {},
}

// LangAlias pairs a pattern with the canonical tag it normalizes to.
type LangAlias struct {
	Pattern *regexp.Regexp
	Tag     string
}

// LangAliases is the ordered alias list for favorite-language normalization.
// Order is load-bearing: earlier patterns shadow later ones (c++ and c# must
// precede the bare-c pattern, javascript must precede java), so this stays a
// slice and is matched front to back with first match winning.
var LangAliases = []LangAlias{
	{regexp.MustCompile(`objective[ -]?c`), "objective-c"},
	{regexp.MustCompile(`c\+\+`), "c++"},
	{regexp.MustCompile(`c#|csharp`), "c#"},
	{regexp.MustCompile(`javascript|ecmascript|\bjs\b|node`), "javascript"},
	{regexp.MustCompile(`typescript|\bts\b`), "typescript"},
	{regexp.MustCompile(`\bjava\b`), "java"},
	{regexp.MustCompile(`python|\bpy\b`), "python"},
	{regexp.MustCompile(`golang|\bgo\b`), "go"},
	{regexp.MustCompile(`\bshell\b|\bbash\b|\bzsh\b`), "shell"},
	{regexp.MustCompile(`visual basic|vb\.?net|\bvba\b`), "visual basic"},
	{regexp.MustCompile(`\bc\b`), "c"},
}
