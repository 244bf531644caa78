package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/dataexpect/cmd/fetch"
	"github.com/cockroachdb/dataexpect/cmd/suite"
	"github.com/cockroachdb/dataexpect/cmd/validate"
	"github.com/cockroachdb/dataexpect/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dataexpect",
	Short: "Validate database query results against declarative expectations",
	Long: `dataexpect fetches query results from SQL Server, PostgreSQL, CockroachDB, MySQL or SQLite and validates them against expectation suites.

` + config.Description(),
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(fetch.Command())
	rootCmd.AddCommand(validate.Command())
	rootCmd.AddCommand(suite.Command())
}
