package formula

import (
	"fmt"
	"strings"
)

// Kind identifies the five formula families. Classification is total: every
// formula maps to exactly one kind, with KindFreeJudge the default for
// unrecognized multi-clause heads.
type Kind int

const (
	// KindCompute is a plain computation with no comparison operator.
	KindCompute Kind = iota
	// KindFixedJudge is a single-clause judgement with fixed operands.
	KindFixedJudge
	// KindTimeCalc derives a value for a specific time unit.
	KindTimeCalc
	// KindStats aggregates a field over group keys under a condition.
	KindStats
	// KindFreeJudge is a parameterized judgement over dimension fields.
	KindFreeJudge
)

// String returns the configuration-table label for the kind.
func (k Kind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindFixedJudge:
		return "fixed-param-judge"
	case KindTimeCalc:
		return "time-calc"
	case KindStats:
		return "stats"
	case KindFreeJudge:
		return "free-param-judge"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// comparisonOperators lists every recognized comparison token, two-character
// forms first so that stripping "<=" never leaves a stray "=" behind.
var comparisonOperators = []string{
	"==", "!=", "<=", ">=", "<", ">",
	".isna()", ".isnull()", ".notna()", ".notnull()",
	".isin", ".str.contains",
}

// statsHeads and timeHeads drive head-based classification of multi-clause
// formulas. Unmatched heads fall through to KindFreeJudge.
var (
	statsHeads = []string{"count", "sum", "mean", "quantile"}
	timeHeads  = []string{"year", "Y", "quarter", "Q", "month", "M", "day", "D"}
)

var headKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(statsHeads)+len(timeHeads))
	for _, h := range statsHeads {
		m[h] = KindStats
	}
	for _, h := range timeHeads {
		m[h] = KindTimeCalc
	}
	return m
}()

// Parsed is the result of classifying one formula. Fields beyond Kind and
// Formula are populated per kind. Formula is always the synthesized
// field-bearing representation: it contains every field reference the
// formula uses, even when the canonical form differs from the original
// text, and it is the only string downstream field extraction may read.
type Parsed struct {
	Kind    Kind
	Formula string

	// TimeUnit is set for KindTimeCalc.
	TimeUnit string

	// StatsMethod, StatsField, GroupKeys and Condition are set for KindStats.
	StatsMethod string
	StatsField  string
	GroupKeys   []string
	Condition   string

	// Target, Direction and DimensionNames are set for KindFreeJudge.
	Target         string
	Direction      string
	DimensionNames []string
}

// AddCondition is the legacy alias for Condition kept for older call sites;
// both always refer to the same value.
func (p *Parsed) AddCondition() string { return p.Condition }

// Parse splits a formula on ";" and classifies it by structural and lexical
// cues. Input is expected to be Clean()ed already.
func Parse(formula string) (*Parsed, error) {
	if !strings.Contains(formula, ";") {
		// Compute and fixed-param judgements are single executable formulas.
		if strings.Contains(formula, ",") {
			return nil, fmt.Errorf("%w: \",\" in single-clause formula %q", ErrMalformedFormula, formula)
		}
		if containsComparison(formula) {
			if !VerifyComparisons(formula) {
				return nil, fmt.Errorf("%w: single \"=\" or \"<>\" in %q", ErrComparisonForm, formula)
			}
			return &Parsed{Kind: KindFixedJudge, Formula: formula}, nil
		}
		return &Parsed{Kind: KindCompute, Formula: formula}, nil
	}

	// Time-calc, stats and free-param judgements use the clause table form:
	// clauses split on ";", arguments split on ",".
	clauses := strings.Split(formula, ";")
	table := make([][]string, len(clauses))
	for i, c := range clauses {
		table[i] = strings.Split(c, ",")
	}
	head := table[0][0]

	switch headKinds[head] {
	case KindTimeCalc:
		if len(table) < 2 || len(table[1]) < 1 {
			return nil, fmt.Errorf("%w: time-calc formula missing body: %q", ErrMalformedFormula, formula)
		}
		return &Parsed{
			Kind:     KindTimeCalc,
			TimeUnit: head,
			Formula:  table[1][0],
		}, nil

	case KindStats:
		if len(table) < 3 || len(table[2]) < 1 {
			return nil, fmt.Errorf("%w: stats formula needs method, group keys and condition clauses: %q", ErrMalformedFormula, formula)
		}
		p := &Parsed{
			Kind:        KindStats,
			StatsMethod: head,
			GroupKeys:   table[1],
			Condition:   table[2][0],
		}
		if len(table[0]) > 1 {
			p.StatsField = strings.Join(table[0][1:], ",")
		}
		// Canonical comma-join: stats field, group keys, condition — the
		// order is load-bearing for field extraction.
		parts := append([]string{p.StatsField}, p.GroupKeys...)
		parts = append(parts, p.Condition)
		p.Formula = strings.Join(parts, ",")
		return p, nil

	default:
		// Free-param judgement: first clause names target and direction,
		// second clause lists the dimension fields used by the judgement.
		if len(table[0]) < 2 || len(table) < 2 {
			return nil, fmt.Errorf("%w: free-param formula needs a direction and a dimension clause: %q", ErrMalformedFormula, formula)
		}
		p := &Parsed{
			Kind:           KindFreeJudge,
			Target:         head,
			Direction:      table[0][1],
			DimensionNames: table[1],
		}
		p.Formula = head + "+" + strings.Join(p.DimensionNames, "*")
		return p, nil
	}
}

func containsComparison(formula string) bool {
	for _, op := range comparisonOperators {
		if strings.Contains(formula, op) {
			return true
		}
	}
	return false
}
