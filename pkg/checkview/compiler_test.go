package checkview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/schema"
)

var testSubjects = []SubjectEntry{
	{FieldCode: "total_assets", FieldName: "资产总计", VirtualCode: "ZC01"},
	{FieldCode: "total_assets_detail", FieldName: "资产明细", VirtualCode: "ZC0101"},
	{FieldCode: "total_liab", FieldName: "负债总计", VirtualCode: "FZ01"},
	{FieldCode: "equity", FieldName: "所有者权益", VirtualCode: "QY01"},
}

func TestCompiler_CompileCross(t *testing.T) {
	c := NewCompiler(testSubjects, nil)

	tests := []struct {
		name string
		rule CrossRule
		want CompiledRule
	}{
		{
			name: "coalesce everything but the keyword",
			rule: CrossRule{Code: "chk001", Condition: "ZC01==FZ01+QY01", Keyword: "ZC01", Level: 1},
			want: CompiledRule{
				Code:      "chk001",
				Condition: "total_assets=COALESCE(total_liab, 0)+COALESCE(equity, 0)",
				Level:     1,
			},
		},
		{
			name: "no keyword wraps every operand",
			rule: CrossRule{Code: "chk002", Condition: "ZC01>=FZ01", Level: 2},
			want: CompiledRule{
				Code:      "chk002",
				Condition: "COALESCE(total_assets, 0)>=COALESCE(total_liab, 0)",
				Level:     2,
			},
		},
		{
			name: "longer virtual code wins over its prefix",
			rule: CrossRule{Code: "chk003", Condition: "ZC0101==100", Keyword: "ZC0101", Level: 1},
			want: CompiledRule{
				Code:      "chk003",
				Condition: "total_assets_detail=100",
				Level:     1,
			},
		},
		{
			name: "full width input normalized first",
			rule: CrossRule{Code: "chk004", Condition: "ZC01＝＝FZ01", Keyword: "ZC01", Level: 1},
			want: CompiledRule{
				Code:      "chk004",
				Condition: "total_assets=COALESCE(total_liab, 0)",
				Level:     1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CompileCross(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompiler_CompileCross_Errors(t *testing.T) {
	c := NewCompiler(testSubjects, nil)

	_, err := c.CompileCross(CrossRule{Condition: "ZC01==FZ01"})
	assert.Error(t, err)

	_, err = c.CompileCross(CrossRule{Code: "chk001"})
	assert.Error(t, err)
}

func TestCompiler_CompileSubject(t *testing.T) {
	c := NewCompiler(testSubjects, nil)

	got, err := c.CompileSubject(SubjectRule{Code: "imp001", SubjectCode: "ZC01", Level: 2})
	require.NoError(t, err)
	assert.Equal(t, CompiledRule{Code: "imp001", Condition: "total_assets<>0", Level: 2}, got)

	// Compound subject expressions substitute every occurrence.
	got, err = c.CompileSubject(SubjectRule{Code: "imp002", SubjectCode: "ZC01|FZ01", Level: 1})
	require.NoError(t, err)
	assert.Equal(t, "total_assets<>0|total_liab<>0", got.Condition)

	_, err = c.CompileSubject(SubjectRule{Code: "imp003"})
	assert.Error(t, err)
}

func TestRuleFilter_Keep(t *testing.T) {
	f := RuleFilter{ModelCode: "model1", Levels: []int{1, 2}}

	assert.True(t, f.Keep("model1", 1))
	assert.True(t, f.Keep("model1", 2))
	assert.False(t, f.Keep("model1", 3))
	assert.False(t, f.Keep("model2", 1))

	// Zero filter keeps everything.
	assert.True(t, RuleFilter{}.Keep("anything", 99))
}

func TestCompiler_CompileAll(t *testing.T) {
	c := NewCompiler(testSubjects, nil)
	filter := RuleFilter{ModelCode: "model1", Levels: []int{1, 2}}

	cross := []CrossRule{
		{Code: "chk001", Condition: "ZC01==FZ01+QY01", Keyword: "ZC01", Level: 1, ModelCode: "model1"},
		{Code: "chk002", Condition: "ZC01>=FZ01", Level: 3, ModelCode: "model1"},  // filtered by level
		{Code: "chk003", Condition: "ZC01>0", Keyword: "ZC01", Level: 1, ModelCode: "model2"}, // filtered by model
		{Code: "", Condition: "ZC01>0", Level: 1, ModelCode: "model1"},            // bad row, skipped
	}
	subjects := []SubjectRule{
		{Code: "imp001", SubjectCode: "QY01", Level: 2, ModelCode: "model1"},
	}

	got, err := c.CompileAll(context.Background(), cross, subjects, filter)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "chk001", got[0].Code)
	assert.Equal(t, "imp001", got[1].Code)
	assert.Equal(t, "equity<>0", got[1].Condition)
}

func TestRenderMode(t *testing.T) {
	rule := CompiledRule{Code: "chk001", Condition: "a=b", Level: 2}

	assert.Equal(t, "CASE\n    WHEN a=b THEN 0\n    ELSE 2\nEND AS chk001", RenderSeverity.Render(rule))
	assert.Equal(t, "COALESCE(a=b, false) AS chk001", RenderBoolean.Render(rule))
}

func TestBuildViewSQL(t *testing.T) {
	rules := []CompiledRule{
		{Code: "chk001", Condition: "a=b", Level: 1},
		{Code: "imp001", Condition: "equity<>0", Level: 2},
	}
	spec := ViewSpec{
		Schema:      "public",
		ViewName:    "c_check",
		SourceTable: "temp_avaliable_data2",
		SourceAlias: "tad2",
		Comments: []schema.FieldInfo{
			{TableCode: "c_check", Code: "chk001", Name: "资产负债检查"},
		},
	}

	got, err := BuildViewSQL(spec, rules)
	require.NoError(t, err)

	assert.Contains(t, got, "CREATE OR REPLACE VIEW public.c_check\nAS\nSELECT\n")
	assert.Contains(t, got, "tad2.crmcode AS crmcode,\ntad2.tyear AS tyear,\ntad2.tquarter AS tquarter,")
	assert.Contains(t, got, "CASE\n    WHEN a=b THEN 0\n    ELSE 1\nEND AS chk001")
	assert.Contains(t, got, "FROM public.temp_avaliable_data2 AS tad2;")
	assert.Contains(t, got, "COMMENT ON COLUMN public.c_check.chk001 IS '资产负债检查';")
}

func TestBuildViewSQL_Defaults(t *testing.T) {
	rules := []CompiledRule{{Code: "chk001", Condition: "a=b", Level: 1}}

	got, err := BuildViewSQL(ViewSpec{ViewName: "c_check", SourceTable: "t", Mode: RenderBoolean}, rules)
	require.NoError(t, err)
	assert.Contains(t, got, "CREATE OR REPLACE VIEW public.c_check")
	assert.Contains(t, got, "src.crmcode AS crmcode")
	assert.Contains(t, got, "COALESCE(a=b, false) AS chk001")

	_, err = BuildViewSQL(ViewSpec{ViewName: "c_check", SourceTable: "t"}, nil)
	assert.Error(t, err)

	_, err = BuildViewSQL(ViewSpec{}, rules)
	assert.Error(t, err)
}
