package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"darkfinance/internal/cli"
	"darkfinance/internal/core"
	"darkfinance/internal/payoff"
)

func newAccountCmd(opts *rootOptions) *cobra.Command {
	var name, balance, pay, minimum string

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Time to payoff for a single account",
		Example: `  payoff account --balance 3000 --pay 100 --min 50
  payoff account --name Visa --balance '$1,500' --pay 365`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := core.Account{Name: name}
			for _, f := range []struct {
				flag string
				raw  string
				dst  *float64
			}{
				{"balance", balance, &a.CurrentBalance},
				{"pay", pay, &a.MyMonthlyPay},
				{"min", minimum, &a.MinimumPayment},
			} {
				if f.raw == "" {
					continue
				}
				v, err := core.ParseAmount(f.raw)
				if err != nil {
					return fmt.Errorf("--%s %q: %w", f.flag, f.raw, err)
				}
				*f.dst = v
			}

			proj := payoff.ProjectAccounts([]core.Account{a})[0]
			return opts.emit(cmd.OutOrStdout(), proj, func() string {
				return cli.RenderAccountPayoff(a, proj.Payoff, proj.Acceleration)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Account name")
	cmd.Flags().StringVar(&balance, "balance", "", "Current balance")
	cmd.Flags().StringVar(&pay, "pay", "", "Your monthly payment")
	cmd.Flags().StringVar(&minimum, "min", "", "Minimum monthly payment")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("pay")
	return cmd
}
