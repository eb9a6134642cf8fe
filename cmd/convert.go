package cmd

import (
	"github.com/spf13/cobra"

	"tinydns-logstat/report"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Print each decoded log entry",
		Long:  `Decode FILE (or "-" for stdin) and print one entry per line as text or JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewEntryRenderer(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			s, err := a.openStream(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			for s.Next() {
				if err := r.Render(s.Entry()); err != nil {
					return err
				}
			}
			if err := s.Err(); err != nil {
				return err
			}
			a.logger.Debug("convert finished", "lines", s.Line(), "skipped", s.Skipped())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json")
	return cmd
}
