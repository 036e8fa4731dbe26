package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/checkview"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/schema"
)

// Tables loads r_dict_table_info, skipping the "-" placeholder rows.
func (s *Store) Tables(ctx context.Context) ([]schema.TableInfo, error) {
	query := fmt.Sprintf(`
		SELECT table_code, COALESCE(table_name, '')
		FROM %s.r_dict_table_info
		WHERE table_code != '-'
		ORDER BY table_code`, s.schema)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []schema.TableInfo
	for rows.Next() {
		var t schema.TableInfo
		if err := rows.Scan(&t.Code, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Table loads a single r_dict_table_info row.
func (s *Store) Table(ctx context.Context, tableCode string) (schema.TableInfo, error) {
	query := fmt.Sprintf(`
		SELECT table_code, COALESCE(table_name, '')
		FROM %s.r_dict_table_info
		WHERE table_code = $1`, s.schema)

	var t schema.TableInfo
	err := s.db.QueryRowContext(ctx, query, tableCode).Scan(&t.Code, &t.Name)
	if err == sql.ErrNoRows {
		return t, fmt.Errorf("table %s not found in r_dict_table_info", tableCode)
	}
	if err != nil {
		return t, fmt.Errorf("failed to query table info: %w", err)
	}
	return t, nil
}

// Fields loads the enabled r_dict_field_info rows for one table, in field
// order.
func (s *Store) Fields(ctx context.Context, tableCode string) ([]schema.FieldInfo, error) {
	query := fmt.Sprintf(`
		SELECT table_code, field_order, field_code, COALESCE(field_name, ''),
		       COALESCE(data_type_para, ''), COALESCE(default_value, ''),
		       COALESCE(is_not_null, false), COALESCE(enable_status, false),
		       COALESCE(sync_field_code, ''), COALESCE(history_code, ''),
		       COALESCE(remarks, '')
		FROM %s.r_dict_field_info
		WHERE table_code = $1 AND COALESCE(enable_status, false)
		ORDER BY field_order`, s.schema)

	rows, err := s.db.QueryContext(ctx, query, tableCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query field info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fields []schema.FieldInfo
	for rows.Next() {
		var f schema.FieldInfo
		if err := rows.Scan(&f.TableCode, &f.Order, &f.Code, &f.Name,
			&f.DataType, &f.DefaultValue, &f.NotNull, &f.Enabled,
			&f.SyncCode, &f.HistoryCode, &f.Remarks); err != nil {
			return nil, fmt.Errorf("failed to scan field info: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Constraints loads the r_dict_table_constraints rows for one table with the
// pos01..pos10 columns collapsed into an ordered column list.
func (s *Store) Constraints(ctx context.Context, tableCode string) ([]schema.ConstraintInfo, error) {
	query := fmt.Sprintf(`
		SELECT owner_table, constraint_name, constraint_type,
		       COALESCE(fk_ref_to, '-'), COALESCE(fk_limit, ''),
		       COALESCE(pos01, ''), COALESCE(pos02, ''), COALESCE(pos03, ''),
		       COALESCE(pos04, ''), COALESCE(pos05, ''), COALESCE(pos06, ''),
		       COALESCE(pos07, ''), COALESCE(pos08, ''), COALESCE(pos09, ''),
		       COALESCE(pos10, '')
		FROM %s.r_dict_table_constraints
		WHERE owner_table = $1
		ORDER BY constraint_name, fk_ref_to`, s.schema)

	rows, err := s.db.QueryContext(ctx, query, tableCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var constraints []schema.ConstraintInfo
	for rows.Next() {
		var c schema.ConstraintInfo
		pos := make([]string, 10)
		dest := []any{&c.OwnerTable, &c.Name, &c.Type, &c.RefTable, &c.FKLimit}
		for i := range pos {
			dest = append(dest, &pos[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		for _, p := range pos {
			if p != "" && p != "-" {
				c.Columns = append(c.Columns, p)
			}
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

// Subjects loads r_subject_dict, the virtual-to-physical code mapping.
func (s *Store) Subjects(ctx context.Context) ([]checkview.SubjectEntry, error) {
	query := fmt.Sprintf(`
		SELECT field_code, COALESCE(field_name, ''),
		       COALESCE(field_virtual_code, ''), COALESCE(field_history_code, '')
		FROM %s.r_subject_dict`, s.schema)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject dict: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []checkview.SubjectEntry
	for rows.Next() {
		var e checkview.SubjectEntry
		if err := rows.Scan(&e.FieldCode, &e.FieldName, &e.VirtualCode, &e.HistoryCode); err != nil {
			return nil, fmt.Errorf("failed to scan subject dict: %w", err)
		}
		subjects = append(subjects, e)
	}
	return subjects, rows.Err()
}

// CrossRules loads r_check_cross, the cross-field accounting-equation rules.
func (s *Store) CrossRules(ctx context.Context) ([]checkview.CrossRule, error) {
	query := fmt.Sprintf(`
		SELECT code, COALESCE(accounting_equation, ''), COALESCE(condition, ''),
		       COALESCE(level, 0), COALESCE(tips, ''),
		       COALESCE(model_code, ''), COALESCE(keyword_code, '')
		FROM %s.r_check_cross
		ORDER BY code`, s.schema)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cross rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []checkview.CrossRule
	for rows.Next() {
		var r checkview.CrossRule
		var equation, condition string
		if err := rows.Scan(&r.Code, &equation, &condition, &r.Level,
			&r.Tips, &r.ModelCode, &r.Keyword); err != nil {
			return nil, fmt.Errorf("failed to scan cross rule: %w", err)
		}
		// The condition column holds the executable form; the accounting
		// equation is display text and only used as a fallback.
		r.Condition = condition
		if r.Condition == "" {
			r.Condition = equation
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// SubjectRules loads r_check_important_subject, the nonzero-subject rules.
func (s *Store) SubjectRules(ctx context.Context) ([]checkview.SubjectRule, error) {
	query := fmt.Sprintf(`
		SELECT code, COALESCE(subject_code, ''), COALESCE(condition, ''),
		       COALESCE(level, 0), COALESCE(tips, ''), COALESCE(model_code, '')
		FROM %s.r_check_important_subject
		ORDER BY code`, s.schema)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []checkview.SubjectRule
	for rows.Next() {
		var r checkview.SubjectRule
		if err := rows.Scan(&r.Code, &r.SubjectCode, &r.Condition,
			&r.Level, &r.Tips, &r.ModelCode); err != nil {
			return nil, fmt.Errorf("failed to scan subject rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
