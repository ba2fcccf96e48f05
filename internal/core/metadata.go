package core

import "regexp"

// sheetKitRegex matches the nesting summary line, e.g. "3 Sheet(s) = 1 Kit(s)".
var sheetKitRegex = regexp.MustCompile(`(?i)(\d+(\.\d+)?)\s*Sheet\(s\)\s*=\s*(\d+(\.\d+)?)\s*Kit\(s\)`)

// SheetKit is the document-level nesting metadata.
type SheetKit struct {
	Sheet Number
	Kit   Number
}

// ParseSheetKit finds the first "<n> Sheet(s) = <m> Kit(s)" in text.
// Both numbers are unset when the pattern is absent; a value too large to
// be finite is unset on its own.
func ParseSheetKit(text string) SheetKit {
	m := sheetKitRegex.FindStringSubmatch(text)
	if m == nil {
		return SheetKit{}
	}

	return SheetKit{
		Sheet: ToNumber(TextCell(m[1])),
		Kit:   ToNumber(TextCell(m[3])),
	}
}
