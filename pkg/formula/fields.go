package formula

import "strings"

// reservedWords are tokens that can never be field references: boolean
// literals, aggregation and time-unit heads, the match accessors and abs.
var reservedWords = map[string]struct{}{
	"match": {}, "exact_match": {},
	"year": {}, "Y": {},
	"quarter": {}, "Q": {},
	"month": {}, "M": {},
	"day": {}, "D": {},
	"count": {}, "sum": {}, "mean": {}, "quantile": {},
	"abs":  {},
	"True": {}, "False": {}, "TRUE": {}, "FALSE": {}, "true": {}, "false": {},
}

// stopSymbols are the structural, arithmetic and comparison characters that
// separate field tokens.
const stopSymbols = `,+-*/()=<>%#&|`

// shiftMinusGuards protects the shift-operator-followed-by-minus sequences
// (forward shifts like A^-1) from being split on the minus sign. The doubled
// operator never occurs in real formulas.
var shiftMinusGuards = [][2]string{
	{"^-", "^^"},
	{"~-", "~~"},
	{"°-", "°°"},
}

// ExtractFields tokenizes a normalized formula into the field references it
// uses. With unique set, duplicates are collapsed and shift or executable
// suffixes (everything from the first "~", "^", "°" or ".") are stripped so
// that shifted variants fold into their origin field; without it, all
// retained tokens come back in original order, duplicates included.
func ExtractFields(formula string, unique bool) []string {
	for _, g := range shiftMinusGuards {
		formula = strings.ReplaceAll(formula, g[0], g[1])
	}
	for _, s := range stopSymbols {
		formula = strings.ReplaceAll(formula, string(s), " ")
	}
	for strings.Contains(formula, "  ") {
		formula = strings.ReplaceAll(formula, "  ", " ")
	}
	formula = strings.TrimSpace(formula)
	for _, g := range shiftMinusGuards {
		formula = strings.ReplaceAll(formula, g[1], g[0])
	}

	var fields []string
	for _, f := range strings.Split(formula, " ") {
		if f == "" || isNumericToken(f) || strings.Contains(f, `"`) {
			continue
		}
		if _, reserved := reservedWords[f]; reserved {
			continue
		}
		// A dotted token is an executable-style reference; mark it with a
		// trailing call form unless it already ends in one.
		if strings.Contains(f, ".") && !strings.HasSuffix(f, ")") {
			f += "()"
		}
		fields = append(fields, f)
	}

	if !unique {
		return fields
	}
	return uniqueOrigins(fields)
}

// uniqueOrigins deduplicates, strips any shift or executable suffix, and
// deduplicates again, preserving first-occurrence order.
func uniqueOrigins(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	deduped := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		deduped = append(deduped, f)
	}

	seen = make(map[string]struct{}, len(deduped))
	origins := make([]string, 0, len(deduped))
	for _, f := range deduped {
		if i := strings.IndexAny(f, "~^°."); i >= 0 {
			f = f[:i]
		}
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		origins = append(origins, f)
	}
	return origins
}

// Fields runs the full pipeline on raw formula text: clean, classify, then
// extract fields from the synthesized formula string. The synthesized string
// is guaranteed to carry every field the formula references regardless of
// kind, which is why extraction must not read the original text.
func Fields(formula string, unique bool) ([]string, error) {
	parsed, err := Parse(Clean(formula))
	if err != nil {
		return nil, err
	}
	return ExtractFields(parsed.Formula, unique), nil
}

// isNumericToken reports whether a token is a bare number once digit
// separators and a sign are removed. Quoted strings are handled separately.
func isNumericToken(s string) bool {
	t := strings.NewReplacer(".", "", "-", "").Replace(s)
	if t == "" {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
