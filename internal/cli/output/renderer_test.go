package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_AutoResolvesToMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.Mode())
}

func TestRenderer_Table_Markdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeMarkdown)

	err := r.Table([]string{"Field", "Kind"}, [][]string{
		{"total_assets", "compute"},
		{"毛利率", "fixed-param-judge"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "| Field |")
	assert.Contains(t, out, "| total_assets |")
	assert.Contains(t, out, "| 毛利率 |")
}

func TestRenderer_Table_Text(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeText)

	err := r.Table([]string{"A"}, [][]string{{"1"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "│")
}

func TestRenderer_Table_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeJSON)

	err := r.Table([]string{"Field", "Kind"}, [][]string{
		{"total_assets", "compute"},
	})
	require.NoError(t, err)

	var objs []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &objs))
	require.Len(t, objs, 1)
	assert.Equal(t, "total_assets", objs[0]["Field"])
	assert.Equal(t, "compute", objs[0]["Kind"])
}

func TestRenderer_JSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeJSON)

	require.NoError(t, r.JSON(map[string]string{"cond": "a<>b & c>0"}))
	assert.Contains(t, buf.String(), "a<>b & c>0")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Rules", FormatHeader(2, "Rules"))
	assert.Equal(t, "- **view**: c_check", FormatKeyValue("view", "c_check"))
}
