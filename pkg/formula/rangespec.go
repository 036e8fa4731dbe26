package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Inclusive names the four bracket-pair combinations of an interval.
type Inclusive string

// Inclusivity values, matching closed/open bracket notation: left means the
// lower bound is inclusive, right the upper.
const (
	IncBoth    Inclusive = "both"
	IncLeft    Inclusive = "left"
	IncRight   Inclusive = "right"
	IncNeither Inclusive = "neither"
)

var inclusiveByBrackets = map[string]Inclusive{
	"[]": IncBoth,
	"[)": IncLeft,
	"(]": IncRight,
	"()": IncNeither,
}

// Range is one interval parsed from textual notation. Lower and Upper hold
// the bound text; LowerNum and UpperNum are populated by numeric parses.
type Range struct {
	Lower     string
	Upper     string
	LowerNum  float64
	UpperNum  float64
	Inclusive Inclusive
}

// String re-renders the interval in bracket notation, preserving bound text
// and inclusivity, so parse and render round-trip.
func (r Range) String() string {
	lb, rb := "(", ")"
	switch r.Inclusive {
	case IncBoth:
		lb, rb = "[", "]"
	case IncLeft:
		lb = "["
	case IncRight:
		rb = "]"
	}
	return lb + r.Lower + "," + r.Upper + rb
}

// ParseMultiRange splits a range expression holding several bracket groups,
// like "(-2,-1],[1,2)", and parses each group independently.
func ParseMultiRange(text string) ([]Range, error) {
	text = Clean(text)
	text = strings.ReplaceAll(text, "),", ")|")
	text = strings.ReplaceAll(text, "],", "]|")

	groups := strings.Split(text, "|")
	ranges := make([]Range, 0, len(groups))
	for _, g := range groups {
		r, err := ParseRange(g, false)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ParseRange parses one bracketed interval such as "[1,2)". The opening
// bracket of the first part and the closing bracket of the second select the
// inclusivity. With numeric set, bounds are coerced via ParseNumber.
func ParseRange(text string, numeric bool) (Range, error) {
	text = Clean(text)
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformedRange, text)
	}
	if len(parts[0]) < 2 || len(parts[1]) < 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformedRange, text)
	}

	r := Range{
		Lower: parts[0][1:],
		Upper: parts[1][:len(parts[1])-1],
	}
	brackets := parts[0][:1] + parts[1][len(parts[1])-1:]
	inc, ok := inclusiveByBrackets[brackets]
	if !ok {
		return Range{}, fmt.Errorf("%w: bad brackets in %q", ErrMalformedRange, text)
	}
	r.Inclusive = inc

	if numeric {
		var err error
		if r.LowerNum, err = ParseNumber(r.Lower); err != nil {
			return Range{}, err
		}
		if r.UpperNum, err = ParseNumber(r.Upper); err != nil {
			return Range{}, err
		}
	}
	return r, nil
}

// ParseNumber coerces bound text to a number. "inf" in any case and the
// infinity glyph are treated as infinity; a leading minus carries through.
func ParseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.ReplaceAll(s, "-", "")

	if strings.Contains(strings.ToLower(s), "inf") || strings.Contains(s, "∞") {
		if negative {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if negative {
		return -n, nil
	}
	return n, nil
}

// formatNum renders a threshold the way the configuration tables write them:
// no exponent, no trailing zeros.
func formatNum(f float64) string {
	if math.IsInf(f, 1) {
		return "+∞"
	}
	if math.IsInf(f, -1) {
		return "-∞"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderRange converts a comparison-method label and thresholds into
// interval notation. One threshold renders a half-infinite interval; two
// thresholds need an inside (内) or outside (外) method, with 左包/右包
// qualifiers selecting bracket inclusion. Two-threshold intervals default
// to open bounds.
func RenderRange(method string, thresholds []float64) (string, error) {
	switch len(thresholds) {
	case 1:
		th := formatNum(thresholds[0])
		switch method {
		case "大于", ">":
			return "(" + th + ", +∞)", nil
		case "小于", "<":
			return "(-∞, " + th + ")", nil
		case "大于等于", ">=":
			return "[" + th + ", +∞)", nil
		case "小于等于", "<=":
			return "(-∞, " + th + "]", nil
		}
		return "", fmt.Errorf("%w: %q with one threshold", ErrUnknownMethod, method)

	case 2:
		lo, hi := thresholds[0], thresholds[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		th1, th2 := formatNum(lo), formatNum(hi)
		switch {
		case strings.Contains(method, "外"):
			lb, rb := ")", "("
			if strings.Contains(method, "左包") {
				lb = "]"
			}
			if strings.Contains(method, "右包") {
				rb = "["
			}
			return "(-∞, " + th1 + lb + "|" + rb + th2 + ", +∞)", nil
		case strings.Contains(method, "内"):
			lb, rb := "(", ")"
			if strings.Contains(method, "左包") {
				lb = "["
			}
			if strings.Contains(method, "右包") {
				rb = "]"
			}
			return lb + th1 + ", " + th2 + rb, nil
		}
		return "", fmt.Errorf("%w: %q with two thresholds", ErrUnknownMethod, method)
	}
	return "", fmt.Errorf("%w: %d thresholds", ErrUnknownMethod, len(thresholds))
}

// RenderComparison renders an evaluable comparison expression for a field or
// code instead of interval notation. Thresholds may be literals or column
// names. A second threshold that is empty, a placeholder token, or numeric
// zero degrades the call to single-threshold behavior, as do the inherently
// one-sided methods.
func RenderComparison(code, method string, thresholds []string) (string, error) {
	if len(thresholds) == 0 || len(thresholds) > 2 {
		return "", fmt.Errorf("%w: %d thresholds", ErrUnknownMethod, len(thresholds))
	}

	single := len(thresholds) == 1 ||
		strings.Contains(method, "大于") || strings.Contains(method, "小于") ||
		method == ">" || method == "<" || method == ">=" || method == "<=" ||
		secondThresholdAbsent(thresholds)

	if single {
		th := thresholds[0]
		switch method {
		case "大于", ">":
			return code + ">" + th, nil
		case "小于", "<":
			return code + "<" + th, nil
		case "大于等于", ">=":
			return code + ">=" + th, nil
		case "小于等于", "<=":
			return code + "<=" + th, nil
		}
		return "", fmt.Errorf("%w: %q with one threshold", ErrUnknownMethod, method)
	}

	th1, th2 := thresholds[0], thresholds[1]
	// Sort numerically when both thresholds are literals; column-name
	// thresholds keep their given order.
	if n1, err1 := strconv.ParseFloat(th1, 64); err1 == nil {
		if n2, err2 := strconv.ParseFloat(th2, 64); err2 == nil && n1 > n2 {
			th1, th2 = th2, th1
		}
	}

	leftEq, rightEq := "", ""
	if strings.Contains(method, "左包") {
		leftEq = "="
	}
	if strings.Contains(method, "右包") {
		rightEq = "="
	}

	switch {
	case strings.Contains(method, "外"):
		return code + "<" + leftEq + th1 + " | " + code + ">" + rightEq + th2, nil
	case strings.Contains(method, "内"):
		return code + ">" + leftEq + th1 + " & " + code + "<" + rightEq + th2, nil
	}
	return "", fmt.Errorf("%w: %q with two thresholds", ErrUnknownMethod, method)
}

// secondThresholdAbsent mirrors the truthiness rules of the configuration
// sheets: an empty cell, a placeholder token, or a zero value means "no
// second threshold".
func secondThresholdAbsent(thresholds []string) bool {
	if len(thresholds) < 2 {
		return true
	}
	s := CleanParam(thresholds[1])
	if s == "" {
		return true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n == 0 {
		return true
	}
	return false
}
