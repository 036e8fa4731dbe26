package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive formula console",
		Long: `An interactive console for trying out formulas: type a formula to see
its classification and fields, or use dot-commands for the other compiler
operations.`,
		Args: cobra.NoArgs,
		RunE: runFormulaREPL,
	}
}

func runFormulaREPL(cmd *cobra.Command, _ []string) error {
	historyFile := filepath.Join(os.TempDir(), "idoudw_history")
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".idoudw", "history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "idoudw> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "idoudw formula console\n")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type a formula to classify it, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	logger := config.GetLogger(cmd.Context())
	decoder := formula.NewDecoder(logger)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleREPLCommand(cmd, decoder, line); quit {
				break
			}
			continue
		}

		if err := printParsed(cmd.OutOrStdout(), line); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleREPLCommand(cmd *cobra.Command, decoder *formula.Decoder, line string) bool {
	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".fields":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .fields <formula>")
			return false
		}
		fields, err := formula.Fields(strings.Join(parts[1:], ""), true)
		if err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintln(out, strings.Join(fields, ", "))

	case ".translate":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .translate <field> [sign]")
			return false
		}
		sign := ""
		if len(parts) > 2 {
			sign = parts[2]
		}
		canonical, err := decoder.Translate(parts[1], sign, formula.PolicyRaise)
		if err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintln(out, canonical)

	case ".range":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errw, "Usage: .range <interval>")
			return false
		}
		ranges, err := formula.ParseMultiRange(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
			return false
		}
		for _, r := range ranges {
			_, _ = fmt.Fprintf(out, "%s  lower=%s upper=%s inclusive=%s\n", r.String(), r.Lower, r.Upper, r.Inclusive)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errw, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printParsed(w io.Writer, raw string) error {
	parsed, err := formula.Parse(formula.Clean(raw))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "kind:    %s\n", parsed.Kind)
	_, _ = fmt.Fprintf(w, "formula: %s\n", parsed.Formula)
	if parsed.TimeUnit != "" {
		_, _ = fmt.Fprintf(w, "unit:    %s\n", parsed.TimeUnit)
	}
	if parsed.StatsMethod != "" {
		_, _ = fmt.Fprintf(w, "stats:   %s(%s) by %s\n", parsed.StatsMethod, parsed.StatsField, strings.Join(parsed.GroupKeys, ", "))
	}
	if parsed.Condition != "" {
		_, _ = fmt.Fprintf(w, "where:   %s\n", parsed.Condition)
	}
	fields := formula.ExtractFields(parsed.Formula, true)
	_, _ = fmt.Fprintf(w, "fields:  %s\n", strings.Join(fields, ", "))
	return nil
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  <formula>              Classify a formula and list its fields
  .fields <formula>      Extract unique origin fields
  .translate <f> [sign]  Decode a time-shift marker
  .range <interval>      Parse interval notation
  .clear                 Clear the screen
  .help                  Show this help message
  .quit / .exit          Exit the console

Tips:
  - Full-width punctuation is normalized automatically
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for the dot-commands.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".fields"),
		readline.PcItem(".translate"),
		readline.PcItem(".range"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
