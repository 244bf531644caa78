package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/dataexpect/cmd/internal/cmdutil"
	"github.com/cockroachdb/dataexpect/expect"
	"github.com/cockroachdb/dataexpect/fetch"
	"github.com/cockroachdb/dataexpect/report"
	"github.com/cockroachdb/dataexpect/validate"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var (
		suitePath     string
		allowFailures bool
		concurrency   int
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a query result against an expectation suite.",
		Long: `Validate fetches a dataset, evaluates every expectation of a suite against it and reports the results.
The command fails if any expectation fails, unless --allow-failures is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			startedAt := time.Now()
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			cmdutil.RunMetricsServer(logger)

			set, err := expect.LoadSuite(suitePath)
			if err != nil {
				return err
			}
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			store, err := cmdutil.ReportStore(ctx, logger)
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

			reporter := report.CombinedReporter{}
			reporter.Reporters = append(
				reporter.Reporters,
				report.LogReporter{Logger: logger},
				report.TextReporter{W: cmd.OutOrStdout()},
			)
			var storeReporter *report.StoreReporter
			if store != nil {
				storeReporter = report.NewStoreReporter(store, logger, query, startedAt)
				reporter.Reporters = append(reporter.Reporters, storeReporter)
			}
			defer reporter.Close()

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
			reporter.Report(report.StatusReport{
				Info: fmt.Sprintf(
					"validating %d rows and %d columns against suite %q",
					ds.NumRows(),
					ds.NumColumns(),
					set.Name,
				),
			})

			r := validate.Validate(
				ctx,
				ds,
				set,
				validate.WithConcurrency(concurrency),
				validate.WithLogger(logger),
			)
			report.Emit(reporter, r)
			if storeReporter != nil && storeReporter.Err != nil {
				return storeReporter.Err
			}
			if !r.Success && !allowFailures {
				return errors.Newf(
					"suite %q failed: %d of %d expectations failed",
					r.Suite,
					r.Statistics.Failed,
					r.Statistics.Evaluated,
				)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(
		&suitePath,
		"suite",
		"",
		"path to the expectation suite file",
	)
	if err := cmd.MarkPersistentFlagRequired("suite"); err != nil {
		panic(err)
	}
	cmd.PersistentFlags().BoolVar(
		&allowFailures,
		"allow-failures",
		false,
		"exit successfully even if expectations fail",
	)
	cmd.PersistentFlags().IntVar(
		&concurrency,
		"concurrency",
		validate.DefaultConcurrency,
		"number of expectations to evaluate at a time",
	)
	cmdutil.RegisterDBConnFlags(cmd)
	cmdutil.RegisterQueryFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	cmdutil.RegisterMetricsFlags(cmd)
	cmdutil.RegisterReportStoreFlags(cmd)
	return cmd
}
