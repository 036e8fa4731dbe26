package formula

import "strings"

// VerifyComparisons reports whether a judgement formula uses only the
// two-character comparison forms. The single-character "<" and ">" are left
// in place while stripping so that a SQL-style "<>" still shows up in the
// residual text; a bare "=" or "<>" after stripping fails verification.
// Formulas that assign to parameters must not be passed through here.
func VerifyComparisons(formula string) bool {
	for _, op := range comparisonOperators {
		if op == "<" || op == ">" {
			continue
		}
		formula = strings.ReplaceAll(formula, op, "")
	}
	return !strings.Contains(formula, "=") && !strings.Contains(formula, "<>")
}
