package formula

import "strings"

// emptySentinels are the tokens that mark a missing element inside a
// condition group. SQL NULLs must be mapped to "" by the caller before
// concatenation; they invalidate the group just like an explicit blank.
var emptySentinels = map[string]struct{}{
	"": {}, "-": {}, "nan": {}, "NaN": {}, "NAN": {}, "None": {},
}

// Concat joins grouped condition fragments with a logical operator. A group
// is discarded when any element is an empty or placeholder token; a group
// with no elements at all is discarded the same way rather than joined into
// an empty fragment, so it can never contribute an empty parenthesized
// clause. Each valid group's elements concatenate into one fragment;
// multiple fragments are parenthesized and joined with the operator, a
// single fragment is returned unwrapped. ok is false when no valid group
// remains — the no-condition case, which is an absent value, not an error.
func Concat(groups [][]string, operator string) (condition string, ok bool) {
	fragments := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 || groupInvalid(g) {
			continue
		}
		fragments = append(fragments, strings.Join(g, ""))
	}

	switch len(fragments) {
	case 0:
		return "", false
	case 1:
		return fragments[0], true
	}
	return "(" + strings.Join(fragments, ")"+operator+"(") + ")", true
}

func groupInvalid(group []string) bool {
	for _, el := range group {
		if _, bad := emptySentinels[el]; bad {
			return true
		}
	}
	return false
}
