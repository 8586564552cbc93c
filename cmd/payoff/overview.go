package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"darkfinance/internal/backend"
	"darkfinance/internal/cli"
	"darkfinance/internal/config"
	"darkfinance/internal/services"
)

func newOverviewCmd(opts *rootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Overview for a user from the configured backend",
		Long: "Reads DATA_BACKEND and the related settings from the environment (or .env)\n" +
			"and prints the same overview the API serves.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			// The CLI only reads; change events stay off.
			cfg.AMQPURL = ""

			if user == "" {
				user = cfg.DefaultUserID
			}
			id, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("--user must be a UUID: %w", err)
			}

			logger := opts.logger()
			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			result, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), backendCfg)
			if err != nil {
				return err
			}
			defer result.Close()

			planner := services.NewPlanningService(result.Backend, services.WithLogger(logger))
			ov, err := planner.Refresh(cmd.Context(), id.String())
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), ov, func() string { return cli.RenderOverview(ov) })
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id (default: DEFAULT_USER_ID)")
	return cmd
}
