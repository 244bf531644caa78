package fetch

import (
	"context"

	"github.com/cockroachdb/dataexpect/cmd/internal/cmdutil"
	"github.com/cockroachdb/dataexpect/fetch"
	"github.com/cockroachdb/dataexpect/report"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var head int
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a query result and print it.",
		Long:  `Fetch runs a query (or reads a table) and prints the column types and first rows of the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			conn, err := cmdutil.Connect(ctx, logger, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := conn.Close(ctx); err != nil {
					logger.Warn().Err(err).Msgf("error closing connection")
				}
			}()
			query, err := cmdutil.Query(conn.Dialect())
			if err != nil {
				return err
			}

			fetchCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
			logger.Info().Str("query", query).Msgf("fetching dataset")
			ds, err := fetch.FetchConn(
				fetchCtx,
				conn,
				query,
				fetch.WithLogger(logger),
				fetch.WithRowsPerSecond(cmdutil.RowsPerSecond()),
			)
			if err != nil {
				return err
			}
			return report.WriteDataset(cmd.OutOrStdout(), ds, head)
		},
	}

	cmd.PersistentFlags().IntVar(
		&head,
		"head",
		5,
		"number of rows to print; -1 prints every row",
	)
	cmdutil.RegisterDBConnFlags(cmd)
	cmdutil.RegisterQueryFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	return cmd
}
