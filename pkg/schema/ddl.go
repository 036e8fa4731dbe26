// Package schema renders PostgreSQL DDL from the data-dictionary
// configuration tables: field definitions, constraints, comments and the
// update trigger. It is purely textual; executing the statements is the
// store's job, and validating field codes against live tables is out of
// scope here.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// TableInfo is one row of r_dict_table_info.
type TableInfo struct {
	Code string
	Name string
}

// FieldInfo is one row of r_dict_field_info. Empty strings stand for SQL
// NULLs in the optional columns.
type FieldInfo struct {
	TableCode    string
	Order        int
	Code         string
	Name         string
	DataType     string
	DefaultValue string
	NotNull      bool
	Enabled      bool
	SyncCode     string
	HistoryCode  string
	Remarks      string
}

// ConstraintInfo is one row of r_dict_table_constraints with the pos01..pos10
// columns collapsed into an ordered column list. Foreign keys are configured
// as two rows sharing a name: the owning row carries "-" in RefTable, the
// reference row carries the referenced table and its columns.
type ConstraintInfo struct {
	OwnerTable string
	Name       string
	Type       string
	RefTable   string
	Columns    []string
	FKLimit    string
}

const defaultIndent = 4

// FieldDef renders one column definition line.
func FieldDef(f FieldInfo, indent int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(f.Code)
	b.WriteString(" ")
	b.WriteString(f.DataType)
	if f.DefaultValue != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(f.DefaultValue)
	}
	// A column with a default that also allows NULL gets no nullability
	// clause; otherwise the configuration decides explicitly.
	switch {
	case f.DefaultValue != "" && !f.NotNull:
	case f.NotNull:
		b.WriteString(" NOT NULL")
	default:
		b.WriteString(" NULL")
	}
	return b.String()
}

// ConstraintDef renders one constraint from its configuration rows: a single
// row for pk/uq/idx, two rows for fk.
func ConstraintDef(rows []ConstraintInfo, schema string, indent int) (string, error) {
	var main, ref ConstraintInfo
	switch len(rows) {
	case 1:
		main = rows[0]
		if strings.EqualFold(main.Type, "fk") {
			return "", fmt.Errorf("constraint %s: foreign key needs an owning row and a reference row", main.Name)
		}
	case 2:
		for _, r := range rows {
			if r.RefTable == "-" || r.RefTable == "" {
				main = r
			} else {
				ref = r
			}
		}
		if !strings.EqualFold(main.Type, "fk") {
			return "", fmt.Errorf("constraint %s: two-row configuration is reserved for foreign keys", main.Name)
		}
	default:
		return "", fmt.Errorf("constraint %s: expected one or two rows, got %d", rows[0].Name, len(rows))
	}

	indentation := strings.Repeat(" ", indent)
	cols := strings.Join(main.Columns, ", ")

	switch strings.ToLower(main.Type) {
	case "pk":
		return fmt.Sprintf("%sCONSTRAINT %s PRIMARY KEY (%s)", indentation, main.Name, cols), nil
	case "uq":
		return fmt.Sprintf("%sCONSTRAINT %s UNIQUE (%s)", indentation, main.Name, cols), nil
	case "idx":
		return fmt.Sprintf("%sCONSTRAINT %s INDEX (%s)", indentation, main.Name, cols), nil
	case "fk":
		if ref.FKLimit == "" {
			return "", fmt.Errorf("constraint %s: foreign key needs fk_limit, like \"ON DELETE RESTRICT ON UPDATE CASCADE\"", main.Name)
		}
		refCols := strings.Join(ref.Columns, ", ")
		return fmt.Sprintf("%sCONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s.%s(%s) %s",
			indentation, main.Name, cols, schema, ref.RefTable, refCols, ref.FKLimit), nil
	}
	return "", fmt.Errorf("%s: unsupported constraint type %q", main.OwnerTable, main.Type)
}

// FieldComment renders the COMMENT ON COLUMN statement for a field:
// name, then optional sync and history codes, then optional remarks.
func FieldComment(f FieldInfo, schema string) string {
	var b strings.Builder
	b.WriteString(f.Name)
	if f.SyncCode != "" {
		b.WriteString(", ")
		b.WriteString(f.SyncCode)
	}
	if f.HistoryCode != "" {
		b.WriteString(", ")
		b.WriteString(f.HistoryCode)
	}
	if f.Remarks != "" {
		b.WriteString(": ")
		b.WriteString(f.Remarks)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s.%s IS '%s';", schema, f.TableCode, f.Code, b.String())
}

// TableComment renders the COMMENT ON TABLE statement, or "" for unnamed
// tables.
func TableComment(t TableInfo, schema string) string {
	if t.Name == "" {
		return ""
	}
	return fmt.Sprintf("COMMENT ON TABLE %s.%s IS '%s';", schema, t.Code, t.Name)
}

// TriggerDef renders the BEFORE UPDATE trigger attached to tables carrying
// an update_at column.
func TriggerDef(tableCode, suffix, function, schema string) string {
	return fmt.Sprintf(`CREATE TRIGGER %s_%s BEFORE
    UPDATE ON %s.%s
    FOR EACH ROW EXECUTE FUNCTION %s();`, tableCode, suffix, schema, tableCode, function)
}

// CreateTableSQL renders the full CREATE TABLE statement for a table plus
// its comments and trigger. Fields are ordered by field_order, constraints
// grouped by name.
func CreateTableSQL(table TableInfo, fields []FieldInfo, constraints []ConstraintInfo, schema string) (string, error) {
	ordered := make([]FieldInfo, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	defs := make([]string, 0, len(ordered)+4)
	for _, f := range ordered {
		defs = append(defs, FieldDef(f, defaultIndent))
	}

	for _, group := range groupConstraints(constraints) {
		def, err := ConstraintDef(group, schema, defaultIndent)
		if err != nil {
			return "", err
		}
		defs = append(defs, def)
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (\n%s\n);\n",
		schema, table.Code, strings.Join(defs, ",\n"))

	extras := make([]string, 0, 3)
	if c := TableComment(table, schema); c != "" {
		extras = append(extras, c)
	}

	comments := make([]string, 0, len(ordered))
	for _, f := range ordered {
		comments = append(comments, FieldComment(f, schema))
	}
	if len(comments) > 0 {
		extras = append(extras, strings.Join(comments, "\n"))
	}

	for _, f := range ordered {
		if f.Code == "update_at" {
			extras = append(extras, TriggerDef(table.Code, "update", "set_update_at", schema))
			break
		}
	}

	return stmt + strings.Join(extras, "\n\n"), nil
}

// groupConstraints collects constraint rows by name, sorted by name and
// reference so the owning fk row precedes its reference row.
func groupConstraints(constraints []ConstraintInfo) [][]ConstraintInfo {
	rows := make([]ConstraintInfo, len(constraints))
	copy(rows, constraints)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].RefTable < rows[j].RefTable
	})

	var groups [][]ConstraintInfo
	for _, r := range rows {
		if n := len(groups); n > 0 && groups[n-1][0].Name == r.Name {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []ConstraintInfo{r})
	}
	return groups
}
