package checkview

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/schema"
)

// RenderMode selects how a compiled rule becomes a view column.
type RenderMode int

const (
	// RenderSeverity emits CASE WHEN <cond> THEN 0 ELSE <level> END, so a
	// passing row scores 0 and a failing row scores the rule's severity.
	RenderSeverity RenderMode = iota
	// RenderBoolean emits COALESCE(<cond>, false), a plain pass flag.
	RenderBoolean
)

// Render turns a compiled rule into one SELECT-list column.
func (m RenderMode) Render(rule CompiledRule) string {
	switch m {
	case RenderBoolean:
		return fmt.Sprintf("COALESCE(%s, false) AS %s", rule.Condition, rule.Code)
	default:
		return fmt.Sprintf("CASE\n    WHEN %s THEN 0\n    ELSE %d\nEND AS %s",
			rule.Condition, rule.Level, rule.Code)
	}
}

const defaultCompileWorkers = 8

// CompileAll compiles the filtered rules concurrently, cross rules first.
// A row that fails to compile is logged and skipped so one bad
// configuration row cannot sink the whole view; compiled results keep the
// input order.
func (c *Compiler) CompileAll(ctx context.Context, cross []CrossRule, subjects []SubjectRule, filter RuleFilter) ([]CompiledRule, error) {
	crossOut := make([]*CompiledRule, len(cross))
	subjectOut := make([]*CompiledRule, len(subjects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultCompileWorkers)

	for i, rule := range cross {
		if !filter.Keep(rule.ModelCode, rule.Level) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			compiled, err := c.CompileCross(rule)
			if err != nil {
				c.logger.Warn("skipping cross rule", "code", rule.Code, "error", err)
				return nil
			}
			crossOut[i] = &compiled
			return nil
		})
	}
	for i, rule := range subjects {
		if !filter.Keep(rule.ModelCode, rule.Level) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			compiled, err := c.CompileSubject(rule)
			if err != nil {
				c.logger.Warn("skipping subject rule", "code", rule.Code, "error", err)
				return nil
			}
			subjectOut[i] = &compiled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compiled := make([]CompiledRule, 0, len(crossOut)+len(subjectOut))
	for _, r := range crossOut {
		if r != nil {
			compiled = append(compiled, *r)
		}
	}
	for _, r := range subjectOut {
		if r != nil {
			compiled = append(compiled, *r)
		}
	}
	return compiled, nil
}

// ViewSpec describes the check view to assemble.
type ViewSpec struct {
	Schema      string
	ViewName    string
	SourceTable string
	SourceAlias string
	Mode        RenderMode
	// Comments, when present, emits COMMENT ON COLUMN statements after the
	// view definition.
	Comments []schema.FieldInfo
}

// BuildViewSQL assembles the CREATE OR REPLACE VIEW statement: the key
// columns from the source table, one column per compiled rule, and the
// column comments.
func BuildViewSQL(spec ViewSpec, rules []CompiledRule) (string, error) {
	if spec.ViewName == "" || spec.SourceTable == "" {
		return "", fmt.Errorf("view spec needs a view name and a source table")
	}
	if len(rules) == 0 {
		return "", fmt.Errorf("view %s: no rules to embed", spec.ViewName)
	}
	if spec.Schema == "" {
		spec.Schema = "public"
	}
	if spec.SourceAlias == "" {
		spec.SourceAlias = "src"
	}

	cols := make([]string, 0, len(rules)+3)
	for _, key := range []string{"crmcode", "tyear", "tquarter"} {
		cols = append(cols, fmt.Sprintf("%s.%s AS %s", spec.SourceAlias, key, key))
	}
	for _, rule := range rules {
		cols = append(cols, spec.Mode.Render(rule))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE VIEW %s.%s\nAS\nSELECT\n", spec.Schema, spec.ViewName)
	b.WriteString(strings.Join(cols, ",\n"))
	fmt.Fprintf(&b, "\nFROM %s.%s AS %s;", spec.Schema, spec.SourceTable, spec.SourceAlias)

	if len(spec.Comments) > 0 {
		b.WriteString("\n")
		for _, f := range spec.Comments {
			b.WriteString("\n")
			b.WriteString(schema.FieldComment(f, spec.Schema))
		}
	}
	return b.String(), nil
}
