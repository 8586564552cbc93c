package main

import (
	"time"

	"github.com/spf13/cobra"

	"darkfinance/internal/cli"
	"darkfinance/internal/payoff"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var (
		file  string
		year  int
		order string
	)
	cmd := &cobra.Command{
		Use:     "project",
		Short:   "Full overview from a TOML snapshot file",
		Example: "  payoff project --file snapshot.toml --year 2025 --order high",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := loadSnapshot(file)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}
			snap.Accounts = payoff.SortByBalance(snap.Accounts, payoff.ParseSortOrder(order))
			ov := payoff.BuildOverview(snap, year)
			return opts.emit(cmd.OutOrStdout(), ov, func() string { return cli.RenderOverview(ov) })
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file (TOML)")
	cmd.Flags().IntVar(&year, "year", 0, "Year the projection starts from (default: current year)")
	cmd.Flags().StringVar(&order, "order", "", "Sort accounts by balance: high or low")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
