package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectColumns(mock sqlmock.Sqlmock, table string, cols ...string) {
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery("SELECT column_name").WithArgs("public", table).WillReturnRows(rows)
}

func TestStore_Upsert_ConflictUpdate(t *testing.T) {
	s, mock := newMockStore(t)

	expectColumns(mock, "a_finance_force", "crmcode", "tyear", "tquarter", "subject_code", "subject_value")

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(`INSERT INTO public.a_finance_force \(crmcode, tyear, subject_code, subject_value\) VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT \(crmcode, tyear\) DO UPDATE SET subject_code = EXCLUDED.subject_code, subject_value = EXCLUDED.subject_value`)
	prepared.ExpectExec().WithArgs("IB001024", 2024, "ZC01", 100.5).WillReturnResult(sqlmock.NewResult(0, 1))
	prepared.ExpectExec().WithArgs("IB001024", 2024, "FZ01", 40.0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	spec := UpsertSpec{
		Table:           "a_finance_force",
		Columns:         []string{"crmcode", "tyear", "subject_code", "subject_value"},
		ConflictColumns: []string{"crmcode", "tyear"},
		Action:          ConflictUpdate,
	}
	rows := [][]any{
		{"IB001024", 2024, "ZC01", 100.5},
		{"IB001024", 2024, "FZ01", 40.0},
	}

	require.NoError(t, s.Upsert(context.Background(), spec, rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_ConflictNothing(t *testing.T) {
	s, mock := newMockStore(t)

	expectColumns(mock, "r_subject_dict", "field_code", "field_name")

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(`INSERT INTO public.r_subject_dict \(field_code, field_name\) VALUES \(\$1, \$2\) ON CONFLICT \(field_code\) DO NOTHING`)
	prepared.ExpectExec().WithArgs("total_assets", "资产总计").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	spec := UpsertSpec{
		Table:           "r_subject_dict",
		Columns:         []string{"field_code", "field_name"},
		ConflictColumns: []string{"field_code"},
		Action:          ConflictNothing,
	}

	require.NoError(t, s.Upsert(context.Background(), spec, [][]any{{"total_assets", "资产总计"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_ColumnValidation(t *testing.T) {
	s, mock := newMockStore(t)

	expectColumns(mock, "d_balance", "crmcode", "tyear")

	spec := UpsertSpec{
		Table:   "d_balance",
		Columns: []string{"crmcode", "bogus_col"},
	}
	err := s.Upsert(context.Background(), spec, [][]any{{"IB001024", "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmatched columns")
	assert.Contains(t, err.Error(), "bogus_col")
}

func TestStore_Upsert_BadSpec(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.Upsert(context.Background(), UpsertSpec{}, nil)
	assert.Error(t, err)

	err = s.Upsert(context.Background(), UpsertSpec{Table: "t"}, nil)
	assert.Error(t, err)

	// Conflict action without conflict columns.
	expectColumns(mock, "d_balance", "crmcode")
	err = s.Upsert(context.Background(), UpsertSpec{
		Table:   "d_balance",
		Columns: []string{"crmcode"},
		Action:  ConflictUpdate,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs conflict columns")

	// Unknown action.
	expectColumns(mock, "d_balance", "crmcode", "tyear")
	err = s.Upsert(context.Background(), UpsertSpec{
		Table:           "d_balance",
		Columns:         []string{"crmcode"},
		ConflictColumns: []string{"tyear"},
		Action:          ConflictAction("merge"),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict action must be")
}

func TestStore_Upsert_RowWidthMismatch(t *testing.T) {
	s, mock := newMockStore(t)

	expectColumns(mock, "d_balance", "crmcode", "tyear")
	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO public.d_balance \(crmcode, tyear\) VALUES \(\$1, \$2\)`)

	spec := UpsertSpec{Table: "d_balance", Columns: []string{"crmcode", "tyear"}}
	err := s.Upsert(context.Background(), spec, [][]any{{"only-one-value"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestSubtract(t *testing.T) {
	assert.Equal(t, []string{"c"}, subtract([]string{"a", "c"}, []string{"a", "b"}))
	assert.Empty(t, subtract([]string{"a"}, []string{"a", "b"}))
}
