package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags override the environment configuration
type globalFlags struct {
	source   string
	data     string
	sheetID  string
	sheet    string
	profile  string
	format   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "happydash-cli",
		Short:         "Query the world happiness dataset from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing .env is fine; existing variables win
			_ = godotenv.Load()
			switch flags.format {
			case "table", "json":
				return nil
			default:
				return fmt.Errorf("--format must be table or json, got %q", flags.format)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.source, "source", "", "Data source kind: csv, sheet, xlsx, postgres or sample (default from DATA_SOURCE)")
	pf.StringVar(&flags.data, "data", "", "CSV or xlsx URL or path (default from DATA_URL)")
	pf.StringVar(&flags.sheetID, "sheet-id", "", "Spreadsheet document id (default from SHEET_ID)")
	pf.StringVar(&flags.sheet, "sheet", "", "Sheet name (default from SHEET_NAME)")
	pf.StringVar(&flags.profile, "profile", "", "Schema profile name (default from SCHEMA_PROFILE)")
	pf.StringVar(&flags.format, "format", "table", "Output format: table or json")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(
		newOptionsCmd(flags),
		newFilterCmd(flags),
		newDescribeCmd(flags),
		newCorrCmd(flags),
		newExportCmd(flags),
	)
	return rootCmd
}
