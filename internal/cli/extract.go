package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/internal/config"
	"github.com/vvka-141/tabmeta/internal/db"
	"github.com/vvka-141/tabmeta/internal/files/filesystem"
	"github.com/vvka-141/tabmeta/internal/logging"
	"github.com/vvka-141/tabmeta/internal/pipeline"
	"github.com/vvka-141/tabmeta/internal/store"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

var extractCmd = &cobra.Command{
	Use:   "extract <document.json>",
	Short: "Normalize a catalog export and merge it into the output tables",
	Long: `Extract reads a Tableau metadata API export, normalizes it into
relational tables (owners, workbooks, views, datasources, connections,
tags, plus their join tables), and merges each table into its persisted
file, appending only rows not already present.

Every table is attempted even when another table fails; the final report
lists each table's outcome. The command exits non-zero when any table
could not be persisted.

Configuration is read from tabmeta.yaml in the config directory (see
--config-dir); flags override file values. A .env file in the working
directory is loaded for environment variables such as PGPASSWORD.

Examples:
  # Extract into ./exports using defaults
  tabmeta extract catalog.json

  # Custom output directory and file naming
  tabmeta extract catalog.json -o /var/lib/tabmeta --prefix tableau_

  # Also merge into PostgreSQL
  tabmeta extract catalog.json --pg \
    --pg-connection postgresql://tabmeta@localhost:5432/catalog`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

type extractFlagValues struct {
	configDir    string
	output       string
	prefix       string
	suffix       string
	dateFormat   string
	pg           bool
	pgConnection string
	pgPrompt     bool
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFlags.configDir, "config-dir", ".",
		"Directory containing tabmeta.yaml (optional; defaults apply when absent)")
	extractCmd.Flags().StringVarP(&extractFlags.output, "output", "o", "",
		"Output directory for table files (default: exports, or output.directory from tabmeta.yaml)")
	extractCmd.Flags().StringVar(&extractFlags.prefix, "prefix", "",
		"File name prefix: <prefix><table><suffix>.csv")
	extractCmd.Flags().StringVar(&extractFlags.suffix, "suffix", "",
		"File name suffix: <prefix><table><suffix>.csv")
	extractCmd.Flags().StringVar(&extractFlags.dateFormat, "date-format", "",
		"Go reference layout for formatted timestamps\n"+
			"(default: \"2006-01-02 15:04:05\", or output.date_format from tabmeta.yaml)")

	extractCmd.Flags().BoolVar(&extractFlags.pg, "pg", false,
		"Merge into PostgreSQL instead of CSV files")
	extractCmd.Flags().StringVar(&extractFlags.pgConnection, "pg-connection", "",
		"PostgreSQL connection string (URI or keyword/value format)\n"+
			"Precedence: --pg-connection > postgres.connection in tabmeta.yaml\n"+
			"For security, prefer $PGPASSWORD or --pg-prompt-password over\n"+
			"passwords embedded in the connection string")
	extractCmd.Flags().BoolVar(&extractFlags.pgPrompt, "pg-prompt-password", false,
		"Prompt for the PostgreSQL password on stdin (sets $PGPASSWORD for this run)")
}

// buildExtractConfig resolves flags, tabmeta.yaml and defaults into the run
// configuration. Extracted for testability.
func buildExtractConfig(documentPath string, verbose bool) (tabmeta.ExtractConfig, *config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(extractFlags.configDir)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return tabmeta.ExtractConfig{}, nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
		}
		projectCfg = &config.ProjectConfig{}
	}

	cfg := tabmeta.ExtractConfig{
		DocumentPath:    documentPath,
		OutputDirectory: firstNonEmpty(extractFlags.output, projectCfg.Output.Directory, tabmeta.DefaultOutputDirectory),
		FilePrefix:      firstNonEmpty(extractFlags.prefix, projectCfg.Output.FilePrefix),
		FileSuffix:      firstNonEmpty(extractFlags.suffix, projectCfg.Output.FileSuffix),
		DateFormat:      firstNonEmpty(extractFlags.dateFormat, projectCfg.Output.DateFormat, tabmeta.DefaultDateFormat),
		Verbose:         verbose,
	}

	if err := cfg.Validate(); err != nil {
		return tabmeta.ExtractConfig{}, nil, err
	}
	return cfg, projectCfg, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	cfg, projectCfg, err := buildExtractConfig(args[0], verbose)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(cfg.DocumentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", tabmeta.ErrDocumentNotFound, cfg.DocumentPath)
		}
		return fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := catalog.Parse(raw)
	if err != nil {
		return err
	}
	logger.Verbose("Document parsed: %d workbooks", len(doc.Workbooks))

	// Setup context with signal handling for clean interruption. There is
	// no rollback: an interrupted run leaves tables as the last completed
	// append left them, and the next run picks up from there.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling extraction...")
		cancel()
	}()

	columns := projectCfg.ColumnOverrides()

	var tableStore store.Store
	if extractFlags.pg {
		connString := firstNonEmpty(extractFlags.pgConnection, projectCfg.Postgres.Connection)
		if connString == "" {
			return fmt.Errorf("--pg requires a connection string (--pg-connection or postgres.connection in %s): %w",
				config.ConfigFileName, tabmeta.ErrInvalidConfig)
		}
		if extractFlags.pgPrompt {
			if err := promptPostgresPassword(); err != nil {
				return err
			}
		}
		pool, err := db.Connect(ctx, connString)
		if err != nil {
			return err
		}
		defer pool.Close()
		tableStore = store.NewPostgresStore(db.NewPoolAdapter(pool), columns, logger)
	} else {
		tableStore = store.NewCSVStore(filesystem.NewOSFileSystem(), store.CSVOptions{
			Directory:  cfg.OutputDirectory,
			FilePrefix: cfg.FilePrefix,
			FileSuffix: cfg.FileSuffix,
			Columns:    columns,
			Filenames:  projectCfg.FilenameOverrides(),
		}, logger)
	}

	runner := pipeline.NewRunner(tableStore, logger, cfg.DateFormat)
	report, runErr := runner.Run(ctx, doc)
	printReport(report)

	if runErr != nil {
		return fmt.Errorf("extraction finished with failures: %w", runErr)
	}
	return nil
}

// printReport writes the per-table outcome to stdout. A Partial or Failed
// table is never silently suppressed.
func printReport(report *tabmeta.RunReport) {
	fmt.Printf("\nRun %s (%s)\n", report.RunID, report.Status())
	fmt.Printf("%-24s %-8s %8s %8s %8s %8s\n", "TABLE", "STATUS", "TOTAL", "NEW", "SKIPPED", "DROPPED")
	for _, t := range report.Tables {
		fmt.Printf("%-24s %-8s %8d %8d %8d %8d\n",
			t.Table, t.Status, t.Total, t.New, t.Skipped, t.Dropped)
		if t.Error != "" {
			fmt.Printf("%-24s   error: %s\n", "", t.Error)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
