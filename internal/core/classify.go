package core

import "regexp"

// Part weights returned by ClassifyPart.
const (
	WeightRelief   = 0
	WeightRegular  = 1
	WeightMirrored = 2
)

var reliefRegex = regexp.MustCompile(`(?i)RELIEF`)

// mirroredRegex matches a left-hand token and a right-hand token joined
// by a special separator, e.g. "L Side / R Side" or "LH-PANEL+RH-PANEL".
// A bare "L" or two-letter "LH" style token may carry one word before the
// separator, with optional whitespace. Any longer L token must touch the
// separator directly, so "LEG (REAR)" stays a regular part. The separator
// needs a character that is neither a letter, digit, underscore nor
// whitespace; plain spaces never qualify.
var mirroredRegex = regexp.MustCompile(
	`(?i)\b(?:L[a-z0-9]?\b(?:\s+[a-z0-9]+)?\s*|L[a-z0-9]+)[^\p{L}\p{N}_\s\p{Z}]+.*?\bR[a-z0-9]*`,
)

// decimalPointRegex finds a point between two digits, as in "2.5".
var decimalPointRegex = regexp.MustCompile(`(\d)\.(\d)`)

// ClassifyPart returns how many distinct physical parts one row with the
// given description represents: 0 for relief cuts, 2 for mirrored L/R
// pairs and 1 otherwise. A null description is a regular part.
func ClassifyPart(description Cell) int {
	if !description.Valid {
		return WeightRegular
	}
	return ClassifyDescription(description.Text)
}

// ClassifyDescription is ClassifyPart for plain text.
func ClassifyDescription(desc string) int {
	if reliefRegex.MatchString(desc) {
		return WeightRelief
	}
	if mirroredRegex.MatchString(stripDecimalPoints(desc)) {
		return WeightMirrored
	}
	return WeightRegular
}

// CountingRule is one line of the weight legend shown next to a summary.
type CountingRule struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// CountingRules describes the weights ClassifyPart assigns.
func CountingRules() []CountingRule {
	return []CountingRule{
		{Label: "RELIEF parts", Weight: WeightRelief},
		{Label: "L/R pattern parts (with special char separator, NOT space)", Weight: WeightMirrored},
		{Label: "Regular parts", Weight: WeightRegular},
	}
}

// stripDecimalPoints removes points inside numbers so a dimension such as
// "L2.5" is never read as a token and a separator.
func stripDecimalPoints(s string) string {
	for decimalPointRegex.MatchString(s) {
		s = decimalPointRegex.ReplaceAllString(s, "${1}${2}")
	}
	return s
}
