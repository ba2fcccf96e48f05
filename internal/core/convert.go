package core

// convert.go provides the text-to-value conversions used on extracted cells.
//
// Extracted PDF text is messy in its own ways:
//   - Ligatures and full-width digits from embedded fonts
//   - Quantities that are blank, dashes, or free text
//   - File names with several dots or none
//
// Numeric parsing follows the lenient float syntax of spreadsheet tools:
// surrounding whitespace is ignored, a sign, decimal point and exponent are
// allowed, and "inf"/"nan" spellings are accepted. Anything else is not a
// number, including thousands separators and currency symbols.

import (
	"errors"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// numericRegex validates a decimal number after whitespace is trimmed.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// specialFloatRegex matches the infinity and NaN spellings.
var specialFloatRegex = regexp.MustCompile(`(?i)^[+-]?(inf|infinity|nan)$`)

// parseFloat parses s as a float. Returns false if s is not a number.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) && !specialFloatRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values come back as ±Inf or 0 with ErrRange.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// ToNumber coerces a cell to a number. Null cells, non-numeric text and
// non-finite values (NaN, ±Inf, overflow) all produce an unset Number.
func ToNumber(c Cell) Number {
	if !c.Valid {
		return Number{}
	}
	f, ok := parseFloat(c.Text)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, Valid: true}
}

// ToNumberOrZero coerces a cell to a float, defaulting to 0.
func ToNumberOrZero(c Cell) float64 {
	return ToNumber(c).Or(0)
}

// CleanCell normalizes extracted cell text to NFKC so ligatures, full-width
// digits and non-breaking spaces compare and parse like plain text. Invalid
// UTF-8 is replaced.
func CleanCell(s string) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.ReplaceAll(s, "\x00", "")
	return norm.NFKC.String(s)
}

// ProgramName derives the program label from an uploaded file name: the
// base name with its last extension removed. Leading dots do not start an
// extension, so ".pdf" stays ".pdf".
func ProgramName(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	base := filepath.Base(filename)
	if base == "." || base == "/" {
		return ""
	}

	leading := len(base) - len(strings.TrimLeft(base, "."))
	dot := strings.LastIndex(base, ".")
	if dot < leading {
		return base
	}
	return base[:dot]
}
