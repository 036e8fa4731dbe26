package commands

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/store"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var (
		table     string
		conflict  []string
		action    string
		updateSet []string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load <file.csv>",
		Short: "Load a CSV file into a table with conflict handling",
		Long: `Batch-insert a CSV file into the target table. The CSV header names
the columns and is validated against the live table before anything executes.
--on-conflict plus --do nothing|update turns the insert into an upsert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return fmt.Errorf("--table is required")
			}

			columns, rows, err := readCSV(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to load")
				return nil
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			spec := store.UpsertSpec{
				Table:           table,
				Columns:         columns,
				ConflictColumns: conflict,
				Action:          store.ConflictAction(action),
				UpdateColumns:   updateSet,
				BatchSize:       batchSize,
			}
			if err := s.Upsert(cmd.Context(), spec, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s.%s\n", len(rows), s.Schema(), table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "Target table (required)")
	cmd.Flags().StringSliceVar(&conflict, "on-conflict", nil, "Conflict (unique constraint) columns")
	cmd.Flags().StringVar(&action, "do", "", "Conflict strategy (nothing|update)")
	cmd.Flags().StringSliceVar(&updateSet, "update-set", nil, "Columns to overwrite on conflict (default: all non-key input columns)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Rows per batch (default 1000)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

// readCSV reads a CSV file into a header and value rows. Empty cells become
// NULLs so placeholder-free configuration data round-trips cleanly.
func readCSV(path string) ([]string, [][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV file %s is empty", path)
	}

	header := records[0]
	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			if cell == "" {
				row[i] = nil
				continue
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
