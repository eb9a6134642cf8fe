package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tinydns-logstat/config"
	"tinydns-logstat/decoder"
	"tinydns-logstat/errors"
	"tinydns-logstat/logging"
	"tinydns-logstat/stream"
)

// app holds state shared by the subcommands of one invocation.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string
	lenient   bool

	cfg    *config.Configuration
	logger *logging.Logger
	stderr io.Writer
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "tinydns-logstat",
		Short: "Decode and summarize tinydns query logs",
		Long: `tinydns-logstat decodes the query log lines written by tinydns
(address, port, query id, response code, record type and name, with optional
TAI64N timestamps) and reports on them as entries, frequency tables,
dnstap streams or a small JSON dashboard.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json, logfmt")
	flags.BoolVar(&a.lenient, "lenient", false, "skip undecodable lines instead of failing")

	root.AddCommand(
		newConvertCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("lenient") {
		cfg.Lenient = a.lenient
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.stderr,
	})
	logging.SetDefault(a.logger)
	return nil
}

// openStream opens path with the configured decoder and failure policy.
func (a *app) openStream(path string) (*stream.Stream, error) {
	s, err := stream.Open(path,
		stream.WithDecoder(decoder.NewLineDecoder(a.cfg.DecoderOptions()...)),
		stream.WithLenient(a.cfg.Lenient),
		stream.WithLogger(a.logger.WithComponent("stream")),
	)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("reading log", "path", path, "lenient", a.cfg.Lenient)
	return s, nil
}

// Execute runs the CLI and exits non-zero on any error.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Stderr))
}

func run(root *cobra.Command, stderr io.Writer) int {
	if err := root.Execute(); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints the error and, for decode failures, the violated
// rule and the offending raw line.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if !errors.IsDecode(err) {
		return
	}
	attrs := errors.GetAttributes(err)
	fmt.Fprintf(w, "  rule: %s\n", errors.RootKind(err))
	if line, ok := attrs["line"]; ok {
		fmt.Fprintf(w, "  line: %v\n", line)
	}
	if raw, ok := attrs["raw"]; ok {
		fmt.Fprintf(w, "  raw:  %q\n", raw)
	}
}
