// Package cmd implements the queryflow CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Flags shared by every subcommand.
var (
	cfgFile    string
	dbOverride string
)

var rootCmd = &cobra.Command{
	Use:   "queryflow",
	Short: "natural-language analytics over a SQLite warehouse",
	Long: `queryflow turns plain-English questions into guarded SQL, runs it
against a SQLite warehouse, and explains the result.

Typical session:
  queryflow initdb                        # create and seed the demo warehouse
  queryflow ask "revenue by country"      # one question, one answer
  queryflow batch questions.txt           # many questions over a worker pool
  queryflow schema sales                  # the schema context the generator sees
  queryflow advise "SELECT ..."           # static checks without touching the DB`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Settings file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "SQLite warehouse path (overrides settings and QUERYFLOW_DB)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initdbCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(versionCmd)
}
