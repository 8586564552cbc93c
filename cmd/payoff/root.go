package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"darkfinance/internal/log"
	"darkfinance/internal/payoff"
	"darkfinance/internal/records"
)

type rootOptions struct {
	jsonOutput bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "payoff",
		Short: "Debt payoff projections",
		Long: "Project when debts are paid off, how income splits between bills and debt,\n" +
			"and which payments fall due each month.",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of tables")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newAccountCmd(opts),
		newProjectCmd(opts),
		newOverviewCmd(opts),
		newCalendarCmd(opts),
	)
	return root
}

// logger writes to stderr so tables and JSON on stdout stay clean.
func (o *rootOptions) logger() *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(o.logLevel),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
}

// emit prints v as indented JSON when --json is set, else the rendered text.
func (o *rootOptions) emit(w io.Writer, v any, rendered func() string) error {
	if !o.jsonOutput {
		_, err := fmt.Fprint(w, rendered())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadSnapshot(path string) (payoff.Snapshot, error) {
	f, err := records.LoadSnapshotFile(path)
	if err != nil {
		return payoff.Snapshot{}, err
	}
	return payoff.Snapshot{
		Accounts:      f.Accounts,
		Bills:         f.Bills,
		MonthlyIncome: f.MonthlyIncome,
	}, nil
}
