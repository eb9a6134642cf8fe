package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"tinydns-logstat/errors"
	"tinydns-logstat/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out      string
		identity string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write decoded entries as a dnstap file",
		Long: `Decode FILE (or "-" for stdin) and write every entry as a dnstap
AUTH_QUERY message to a framestream file, readable by dnstap tooling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStream(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := os.Create(out)
			if err != nil {
				return errors.Attr(errors.Wrapf(err, errors.KindIO, "create %s", out), "path", out)
			}
			defer f.Close()

			w, err := export.NewDnstapWriter(f, identity)
			if err != nil {
				return err
			}
			for s.Next() {
				if err := w.Write(s.Entry()); err != nil {
					w.Close()
					return err
				}
			}
			if err := s.Err(); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrapf(err, errors.KindIO, "close %s", out)
			}

			a.logger.Info("dnstap export finished", "path", out, "messages", w.Written, "skipped", s.Skipped())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&out, "out", "", "dnstap output file")
	flags.StringVar(&identity, "identity", "", "dnstap identity stored in each message")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
