package cmd

import (
	"github.com/spf13/cobra"

	"tinydns-logstat/report"
	"tinydns-logstat/stats"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		output   string
		top      int
		textfile string
	)

	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Count queries by address, code, type and name",
		Long: `Decode FILE (or "-" for stdin) and print frequency tables of client
addresses, response codes, record types and query names.

With --textfile the tables are also written in the Prometheus text format,
suitable for the node_exporter textfile collector.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewStatsRenderer(output, cmd.OutOrStdout(), top)
			if err != nil {
				return err
			}

			s, err := a.openStream(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := stats.Aggregate(s)
			if err != nil {
				return err
			}
			if s.Skipped() > 0 {
				a.logger.Warn("undecodable lines skipped", "count", s.Skipped())
			}

			if textfile != "" {
				if err := stats.WriteTextfile(textfile, snap); err != nil {
					return err
				}
				a.logger.Info("wrote textfile", "path", textfile)
			}
			return r.RenderStats(snap)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "text", "output format: text, json")
	flags.IntVar(&top, "top", 0, "show only the N most frequent labels per table (0 for all)")
	flags.StringVar(&textfile, "textfile", "", "also write Prometheus textfile metrics to this path")
	return cmd
}
