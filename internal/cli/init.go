package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tabmeta/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter tabmeta.yaml",
	Long: `Init writes a commented starter configuration into the given directory
(default: current directory). Existing files are never overwritten.

Examples:
  tabmeta init
  tabmeta init ./my-extraction`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := "."
	if len(args) > 0 {
		targetPath = args[0]
	}

	scaffolder := scaffold.NewScaffolder(getVerboseFlag(cmd))
	if err := scaffolder.CreateProject(targetPath); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	fmt.Printf("Created %s/tabmeta.yaml\n", targetPath)
	fmt.Println("Next: tabmeta extract <document.json>")
	return nil
}
