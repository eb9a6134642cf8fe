package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"tinydns-logstat/dashboard"
	"tinydns-logstat/stats"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Serve the frequency tables as a JSON API",
		Long: `Decode FILE (or "-" for stdin), aggregate it once and serve the
result under /api. Basic auth is enabled when DASHBOARD_USER and
DASHBOARD_PASS are set, or when dashboard.user and dashboard.password
are configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStream(args[0])
			if err != nil {
				return err
			}
			snap, err := stats.Aggregate(s)
			s.Close()
			if err != nil {
				return err
			}

			addr := a.cfg.Dashboard.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			user, pass := a.cfg.Dashboard.User, a.cfg.Dashboard.Password
			if v := os.Getenv("DASHBOARD_USER"); v != "" {
				user = v
			}
			if v := os.Getenv("DASHBOARD_PASS"); v != "" {
				pass = v
			}

			logger := a.logger.WithComponent("dashboard")
			logger.Info("aggregated log", "records", snap.Records, "skipped", s.Skipped())
			app := dashboard.New(snap, dashboard.Config{
				User:     user,
				Password: pass,
				Logger:   logger,
			})
			return dashboard.Serve(app, addr, logger)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "listen address")
	return cmd
}
