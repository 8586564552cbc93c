package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"darkfinance/internal/calendar"
	"darkfinance/internal/cli"
	"darkfinance/internal/core"
)

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		months int
		from   string
	)
	cmd := &cobra.Command{
		Use:     "calendar",
		Short:   "Due payments per month from a TOML snapshot file",
		Example: "  payoff calendar --file snapshot.toml --months 3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months < 1 || months > calendar.MaxWindowMonths {
				return fmt.Errorf("--months must be between 1 and %d", calendar.MaxWindowMonths)
			}
			today := time.Now()
			if from != "" {
				d, err := core.ParseDate(from)
				if err != nil {
					return fmt.Errorf("--from %q: %w", from, err)
				}
				today = d.Time
			}

			snap, err := loadSnapshot(file)
			if err != nil {
				return err
			}
			window := calendar.BuildWindow(today, months, snap.Accounts, snap.Bills)
			return opts.emit(cmd.OutOrStdout(), window, func() string { return cli.RenderCalendar(window) })
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file (TOML)")
	cmd.Flags().IntVar(&months, "months", 2, "Number of months to show")
	cmd.Flags().StringVar(&from, "from", "", "First month as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
