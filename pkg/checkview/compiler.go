// Package checkview compiles validation rules from the configuration tables
// into SQL fragments and assembles them into the reporting check view. Two
// rule families share the formula grammar: cross-field accounting-equation
// checks and single-subject-nonzero checks.
package checkview

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// SubjectEntry is one row of r_subject_dict: the mapping from a virtual
// subject code used in hand-written rules to the physical column it lives in.
type SubjectEntry struct {
	FieldCode   string
	FieldName   string
	VirtualCode string
	HistoryCode string
}

// CrossRule is one row of r_check_cross. Keyword names the operand that
// must stay bare; every other field in the condition gets a null-coalescing
// guard so a missing value fails the check instead of vanishing from it.
type CrossRule struct {
	Code      string
	Condition string
	Keyword   string
	Level     int
	Tips      string
	ModelCode string
}

// SubjectRule is one row of r_check_important_subject: the named subject
// must carry a nonzero value.
type SubjectRule struct {
	Code        string
	SubjectCode string
	Condition   string
	Level       int
	Tips        string
	ModelCode   string
}

// CompiledRule is a rule whose condition has been rewritten into executable
// SQL: guards applied, comparison operators normalized, virtual codes
// resolved to physical columns.
type CompiledRule struct {
	Code      string
	Condition string
	Level     int
}

// RuleFilter selects which configuration rows participate in a view build.
type RuleFilter struct {
	ModelCode string
	Levels    []int
}

// Keep reports whether a rule with the given model code and level passes.
func (f RuleFilter) Keep(modelCode string, level int) bool {
	if f.ModelCode != "" && modelCode != f.ModelCode {
		return false
	}
	if len(f.Levels) == 0 {
		return true
	}
	for _, l := range f.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Compiler rewrites rule conditions against a subject dictionary. It is
// safe for concurrent use once constructed.
type Compiler struct {
	subjects []SubjectEntry
	logger   *slog.Logger
}

// NewCompiler builds a compiler over the subject dictionary. Entries are
// ordered by descending virtual-code length so that substitution never
// clobbers a longer code through one of its prefixes.
func NewCompiler(subjects []SubjectEntry, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sorted := make([]SubjectEntry, 0, len(subjects))
	for _, s := range subjects {
		if s.VirtualCode == "" {
			continue
		}
		sorted = append(sorted, s)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].VirtualCode) > len(sorted[j].VirtualCode)
	})
	return &Compiler{subjects: sorted, logger: logger}
}

// CompileCross rewrites a cross-field rule: every field except the keyword
// is wrapped in COALESCE(field, 0), pythonic equality becomes SQL equality,
// and virtual subject codes resolve to physical columns.
func (c *Compiler) CompileCross(rule CrossRule) (CompiledRule, error) {
	if rule.Code == "" {
		return CompiledRule{}, fmt.Errorf("cross rule with empty code (condition %q)", rule.Condition)
	}
	if rule.Condition == "" {
		return CompiledRule{}, fmt.Errorf("cross rule %s: empty condition", rule.Code)
	}

	cond := formula.Clean(rule.Condition)
	fields := formula.ExtractFields(cond, true)

	guarded := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == rule.Keyword {
			continue
		}
		guarded = append(guarded, f)
	}
	// Longest field first, for the same prefix-clobbering reason as the
	// subject dictionary.
	sort.SliceStable(guarded, func(i, j int) bool { return len(guarded[i]) > len(guarded[j]) })
	for _, f := range guarded {
		cond = strings.ReplaceAll(cond, f, fmt.Sprintf("COALESCE(%s, 0)", f))
	}

	cond = strings.ReplaceAll(cond, "==", "=")
	cond = c.resolveVirtual(cond, "")

	c.logger.Debug("compiled cross rule", "code", rule.Code, "condition", cond)
	return CompiledRule{Code: rule.Code, Condition: cond, Level: rule.Level}, nil
}

// CompileSubject rewrites a nonzero-subject rule: each virtual code in the
// subject expression becomes "<physical_column><>0".
func (c *Compiler) CompileSubject(rule SubjectRule) (CompiledRule, error) {
	if rule.Code == "" {
		return CompiledRule{}, fmt.Errorf("subject rule with empty code (subject %q)", rule.SubjectCode)
	}
	if rule.SubjectCode == "" {
		return CompiledRule{}, fmt.Errorf("subject rule %s: empty subject code", rule.Code)
	}

	cond := c.resolveVirtual(formula.Clean(rule.SubjectCode), "<>0")

	c.logger.Debug("compiled subject rule", "code", rule.Code, "condition", cond)
	return CompiledRule{Code: rule.Code, Condition: cond, Level: rule.Level}, nil
}

// resolveVirtual substitutes virtual subject codes with their physical
// columns, appending suffix to each replacement.
func (c *Compiler) resolveVirtual(cond, suffix string) string {
	for _, s := range c.subjects {
		cond = strings.ReplaceAll(cond, s.VirtualCode, s.FieldCode+suffix)
	}
	return cond
}
