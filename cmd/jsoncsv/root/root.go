package root

import (
	"github.com/flarebyte/jsoncsv/cmd/jsoncsv/version"
	"github.com/spf13/cobra"
)

var (
	flagDebug    bool
	flagConfig   string
	flagCRLF     bool
	flagBoundary string
)

// NewRootCmd creates the root command for jsoncsv. The root command itself
// performs the conversion; positional arguments are OUTNAME=INNAME renames.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jsoncsv [flags] [OUTNAME=INNAME ...]",
		Short: "Convert a stream of pretty-printed JSON objects on stdin to CSV on stdout",
		Long: `jsoncsv reads concatenated, pretty-printed JSON objects from stdin and
writes one quoted CSV row per object to stdout, preceded by a header row.

Column names are the object keys in UPPER_SNAKE_CASE unless renamed with an
OUTNAME=INNAME argument (INNAME is matched ignoring case).

An object with both Message and StackTrace keys is an upstream error: it is
written to stderr and the run stops with exit code 2989.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := convertOptions{
				Debug:       flagDebug,
				ConfigPath:  flagConfig,
				CRLF:        flagCRLF,
				CRLFSet:     cmd.Flags().Changed("crlf"),
				Boundary:    flagBoundary,
				BoundarySet: cmd.Flags().Changed("boundary"),
				Renames:     args,
			}
			return runConvert(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Write debug diagnostics to stderr")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue, .yaml or .yml)")
	cmd.Flags().BoolVar(&flagCRLF, "crlf", false, "Terminate lines with CRLF instead of LF")
	cmd.Flags().StringVar(&flagBoundary, "boundary", "column", "Object boundary detection: column or depth")

	// Subcommands
	cmd.AddCommand(version.VersionCmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
