package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/flarebyte/jsoncsv/internal/buildinfo"
	"github.com/spf13/cobra"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jsoncsv version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagShort || !flagJSON {
			_, err := fmt.Fprintf(out, "jsoncsv %s\n", buildinfo.Summary())
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"version":  buildinfo.Version,
			"commit":   buildinfo.Commit,
			"date":     buildinfo.Date,
			"built_by": buildinfo.BuiltBy,
			"go":       runtime.Version(),
			"go_os":    runtime.GOOS,
			"go_arch":  runtime.GOARCH,
		})
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
