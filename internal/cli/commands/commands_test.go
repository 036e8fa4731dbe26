package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a command with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errw bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errw)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "idoudw v1.2.3")
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := execute(t, NewParseCommand(), "-f", "json", "毛利率>=0.2")
	require.NoError(t, err)

	var res parseResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "fixed-param-judge", res.Kind)
	assert.Contains(t, res.Fields, "毛利率")
}

func TestParseCommand_Table(t *testing.T) {
	out, err := execute(t, NewParseCommand(), "-f", "markdown", "A+B*C")
	require.NoError(t, err)
	assert.Contains(t, out, "A+B*C")
	assert.Contains(t, out, "compute")
}

func TestParseCommand_Error(t *testing.T) {
	_, err := execute(t, NewParseCommand(), "A,B")
	assert.Error(t, err)
}

func TestFieldsCommand_JSON(t *testing.T) {
	out, err := execute(t, NewFieldsCommand(), "-f", "json", "A^1+B~2+A")
	require.NoError(t, err)

	var res struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.ElementsMatch(t, []string{"A", "B"}, res.Fields)
}

func TestFieldsCommand_Ordered(t *testing.T) {
	out, err := execute(t, NewFieldsCommand(), "-f", "json", "--ordered", "A+B+A^1")
	require.NoError(t, err)

	var res struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"A", "B", "A^1"}, res.Fields)
}

func TestTranslateCommand_JSON(t *testing.T) {
	out, err := execute(t, NewTranslateCommand(), "-f", "json", "total_assets^1")
	require.NoError(t, err)

	var res struct {
		Canonical string `json:"canonical"`
		Unit      string `json:"unit"`
		Direction string `json:"direction"`
		Offset    int    `json:"offset"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "total_assets_Ybackward1", res.Canonical)
	assert.Equal(t, "Y", res.Unit)
	assert.Equal(t, "backward", res.Direction)
	assert.Equal(t, 1, res.Offset)
}

func TestTranslateCommand_NaturalSign(t *testing.T) {
	out, err := execute(t, NewTranslateCommand(), "-f", "json", "--sign", "上年", "revenue")
	require.NoError(t, err)

	var res struct {
		Canonical string `json:"canonical"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "revenue_Ybackward1", res.Canonical)
}

func TestTranslateCommand_RaisePolicy(t *testing.T) {
	_, err := execute(t, NewTranslateCommand(), "--policy", "raise", "plainfield")
	assert.Error(t, err)
}

func TestRangeParseCommand(t *testing.T) {
	out, err := execute(t, newRangeParseCommand(), "-f", "json", "(-2,-1],[1,2)")
	require.NoError(t, err)

	var res []struct {
		Lower     string `json:"Lower"`
		Upper     string `json:"Upper"`
		Inclusive string `json:"Inclusive"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 2)
	assert.Equal(t, "-2", res[0].Lower)
}

func TestRangeRenderCommand(t *testing.T) {
	out, err := execute(t, newRangeRenderCommand(), "大于", "0.1")
	require.NoError(t, err)
	assert.Equal(t, "(0.1, +∞)\n", out)

	_, err = execute(t, newRangeRenderCommand(), "等于", "1")
	assert.Error(t, err)
}

func TestRangeCompareCommand(t *testing.T) {
	out, err := execute(t, newRangeCompareCommand(), "x", "内", "1", "9")
	require.NoError(t, err)
	assert.Equal(t, "x>1 & x<9\n", out)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idoudw.yaml")

	out, err := execute(t, NewInitCommand(), "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	// A second run must refuse to overwrite.
	_, err = execute(t, NewInitCommand(), "--path", path)
	assert.Error(t, err)
}

func TestShiftPolicy(t *testing.T) {
	_, err := shiftPolicy("warn")
	assert.NoError(t, err)
	_, err = shiftPolicy("explode")
	assert.Error(t, err)
}
