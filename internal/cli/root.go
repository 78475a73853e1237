// Package cli wires the tabmeta commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `  _        _                    _
 | |_ __ _| |__  _ __ ___   ___| |_ __ _
 | __/ _` + "`" + ` | '_ \| '_ ` + "`" + ` _ \ / _ \ __/ _` + "`" + ` |
 | || (_| | |_) | | | | | |  __/ || (_| |
  \__\__,_|_.__/|_| |_| |_|\___|\__\__,_|`

var rootCmd = &cobra.Command{
	Use:   "tabmeta",
	Short: "Tableau catalog metadata normalizer",
	Long: asciiLogo + `

tabmeta reads a Tableau metadata API export (workbooks with their views,
data sources, database connections, tags and owners), normalizes it into
relational tables, and merges the result into durable per-table files
without ever duplicating already-persisted rows. Re-running extraction
against the same export is a no-op.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Source document missing or malformed
  12 - One or more tables failed to persist
  13 - PostgreSQL sink connection failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for tabmeta")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
