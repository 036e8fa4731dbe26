package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Parse_SymbolicMarkers(t *testing.T) {
	d := NewDecoder(nil)

	tests := []struct {
		name  string
		field string
		want  SpecialField
	}{
		{
			name:  "year back one",
			field: "total_assets^1",
			want:  SpecialField{Origin: "total_assets", Unit: UnitYear, Direction: DirBackward, Offset: 1, OK: true},
		},
		{
			name:  "year forward one",
			field: "total_assets^-1",
			want:  SpecialField{Origin: "total_assets", Unit: UnitYear, Direction: DirForward, Offset: -1, OK: true},
		},
		{
			name:  "quarter back two",
			field: "revenue~2",
			want:  SpecialField{Origin: "revenue", Unit: UnitQuarter, Direction: DirBackward, Offset: 2, OK: true},
		},
		{
			name:  "quarter forward",
			field: "revenue~-1",
			want:  SpecialField{Origin: "revenue", Unit: UnitQuarter, Direction: DirForward, Offset: -1, OK: true},
		},
		{
			name:  "year end current",
			field: "equity°0",
			want:  SpecialField{Origin: "equity", Unit: UnitYearEnd, Direction: DirCurrent, Offset: 0, OK: true},
		},
		{
			name:  "year end back one",
			field: "equity°1",
			want:  SpecialField{Origin: "equity", Unit: UnitYearEnd, Direction: DirBackward, Offset: 1, OK: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Parse(tt.field, "", PolicyRaise)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_Parse_NaturalLanguageSigns(t *testing.T) {
	d := NewDecoder(nil)

	tests := []struct {
		name string
		sign string
		want SpecialField
	}{
		{"last year", "上年", SpecialField{Origin: "f", Unit: UnitYear, Direction: DirBackward, Offset: 1, OK: true}},
		{"two years back", "上上年", SpecialField{Origin: "f", Unit: UnitYear, Direction: DirBackward, Offset: 2, OK: true}},
		{"next quarter", "下季", SpecialField{Origin: "f", Unit: UnitQuarter, Direction: DirForward, Offset: -1, OK: true}},
		{"this year end", "本年末", SpecialField{Origin: "f", Unit: UnitYearEnd, Direction: DirCurrent, Offset: 0, OK: true}},
		{"last month", "上月", SpecialField{Origin: "f", Unit: UnitMonth, Direction: DirBackward, Offset: 1, OK: true}},
		{"english year back", "year上", SpecialField{Origin: "f", Unit: UnitYear, Direction: DirBackward, Offset: 1, OK: true}},
		{"signed literal wins", "上年2", SpecialField{Origin: "f", Unit: UnitYear, Direction: DirBackward, Offset: 2, OK: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Parse("f", tt.sign, PolicyRaise)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_Parse_CurrentPeriodNoOp(t *testing.T) {
	d := NewDecoder(nil)
	for _, sign := range []string{"本期", "当期", ""} {
		got, err := d.Parse("f^1", sign, PolicyRaise)
		require.NoError(t, err)
		if sign == "" {
			// Empty sign falls back to splitting the field itself.
			assert.True(t, got.OK)
			continue
		}
		assert.Equal(t, SpecialField{Origin: "f^1"}, got)
	}
}

func TestDecoder_Parse_ExecutableSuffixWins(t *testing.T) {
	d := NewDecoder(nil)
	got, err := d.Parse("balance.isnull", "", PolicyRaise)
	require.NoError(t, err)
	assert.Equal(t, SpecialField{Origin: "balance", Executable: ".isnull", OK: true}, got)
}

func TestDecoder_Parse_PolicyHandling(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.Parse("plainfield", "", PolicyRaise)
	assert.ErrorIs(t, err, ErrUnknownShiftMarker)

	got, err := d.Parse("plainfield", "", PolicyIgnore)
	require.NoError(t, err)
	assert.Equal(t, SpecialField{Origin: "plainfield"}, got)

	got, err = d.Parse("plainfield", "", PolicyWarn)
	require.NoError(t, err)
	assert.False(t, got.OK)
}

func TestDecoder_Parse_DecodeFailures(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.Parse("f", "昨天", PolicyRaise)
	assert.ErrorIs(t, err, ErrUnknownShiftUnit)

	_, err = d.Parse("f", "年", PolicyRaise)
	assert.ErrorIs(t, err, ErrUnknownShiftDirection)

	// Unit and direction decode but no offset is extractable.
	_, err = d.Parse("f^", "", PolicyRaise)
	assert.ErrorIs(t, err, ErrMissingShiftOffset)
}

func TestDecoder_Translate(t *testing.T) {
	d := NewDecoder(nil)

	tests := []struct {
		field string
		want  string
	}{
		{"total_assets^1", "total_assets_Ybackward1"},
		{"total_assets^-1", "total_assets_Yforward1"},
		{"equity°0", "equity_YENDcurrent0"},
		{"revenue~2", "revenue_Qbackward2"},
		// Executable-suffix and unmarked fields render unchanged.
		{"balance.isnull", "balance.isnull"},
	}
	for _, tt := range tests {
		got, err := d.Translate(tt.field, "", PolicyIgnore)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "field %q", tt.field)
	}

	// Unmarked field under PolicyIgnore passes through untranslated.
	got, err := d.Translate("plainfield", "", PolicyIgnore)
	require.NoError(t, err)
	assert.Equal(t, "plainfield", got)
}

func TestDecoder_TranslateAll_LongestFirst(t *testing.T) {
	d := NewDecoder(nil)

	got, err := d.TranslateAll([]string{"A^1", "AB^1", "ABC^1"}, "", PolicyIgnore)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "ABC^1", got[0].Field)
	assert.Equal(t, "AB^1", got[1].Field)
	assert.Equal(t, "A^1", got[2].Field)
	assert.Equal(t, "ABC_Ybackward1", got[0].Canonical)
}
