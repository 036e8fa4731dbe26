// Package formula compiles the constrained formula notation used in the
// reporting configuration tables: short rule strings mixing Chinese keywords,
// algebraic operators and time-shift markers. The package only parses,
// classifies, normalizes and re-renders formulas as text fragments; executing
// them against data is left to the SQL layer that embeds the output.
package formula

import (
	"strings"

	"golang.org/x/text/width"
)

// unifyPairs maps full-width punctuation and bespoke symbols to the
// half-width ASCII forms the rest of the compiler works with. The table is
// fixed; anything not listed passes through untouched.
var unifyPairs = []string{
	"～", "~",
	"（", "(",
	"）", ")",
	"＋", "+",
	"－", "-",
	"×", "*",
	"÷", "/",
	"，", ",",
	"：", ":",
	"；", ";",
	"＝", "=",
	"＜", "<",
	"＞", ">",
	"≤", "<=",
	"≥", ">=",
	"≠", "!=",
	"％", "%",
	"＃", "#",
	"＆", "&",
	"＠", "@",
	"＄", "$",
	"＊", "*",
	"＂", "\"",
	"“", "\"",
	"”", "\"",
	"＇", "'",
	"‘", "'",
	"’", "'",
	"［", "[",
	"］", "]",
	"｛", "{",
	"｝", "}",
	"｜", "|",
	"　", " ",
	"／", "/",
}

var unifyReplacer = strings.NewReplacer(unifyPairs...)

// Clean canonicalizes raw formula text: the fixed punctuation table above,
// then narrowing of any residual full-width alphanumerics, then removal of
// all spaces. Idempotent. Callers holding SQL NULLs must skip them rather
// than feed the string "nan" through here.
func Clean(s string) string {
	s = unifyReplacer.Replace(s)
	s = width.Narrow.String(s)
	return strings.ReplaceAll(s, " ", "")
}

// CleanParam is the lighter cleaner for free parameter text: strips spaces,
// unifies the Chinese comma, and coerces the placeholder tokens "-", "nan"
// and "None" (case-insensitive) to the empty string. Not interchangeable
// with Clean; pick the variant matching the field's semantics.
func CleanParam(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "，", ",")
	switch strings.ToLower(s) {
	case "", "-", "nan", "none":
		return ""
	}
	return s
}
