package suite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/dataexpect/cmd/internal/cmdutil"
	"github.com/cockroachdb/dataexpect/expect"
	"github.com/cockroachdb/dataexpect/fetch"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Manage expectation suites.",
	}
	cmd.AddCommand(initCommand(), showCommand())
	return cmd
}

func initCommand() *cobra.Command {
	var (
		name      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Create a suite describing the shape of a fetched dataset.",
		Long: `Init fetches a dataset and writes a baseline suite expecting its row count, columns and column types.
An existing suite is only replaced if --overwrite is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			path := args[0]
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			exists, err := expect.SuiteExists(path)
			if err != nil {
				return err
			}
			if exists && !overwrite {
				return errors.Newf("suite %s already exists; use --overwrite to replace it", path)
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
			ds, err := fetch.FetchConn(fetchCtx, conn, query, fetch.WithLogger(logger))
			if err != nil {
				return err
			}

			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			set := expect.Scaffold(name, ds)
			if err := expect.SaveSuite(path, set, overwrite); err != nil {
				return err
			}
			logger.Info().
				Str("path", path).
				Int("expectations", set.Len()).
				Msgf("wrote suite")
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(
		&name,
		"name",
		"",
		"name of the suite; defaults to the file name",
	)
	cmd.PersistentFlags().BoolVar(
		&overwrite,
		"overwrite",
		false,
		"replace an existing suite",
	)
	cmdutil.RegisterDBConnFlags(cmd)
	cmdutil.RegisterQueryFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	return cmd
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Print the expectations of a suite.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := expect.LoadSuite(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "suite %q (%d expectations)\n", set.Name, set.Len())
			for i, e := range set.Expectations {
				fmt.Fprintf(out, "  [%d] %s\n", i, e)
			}
			return nil
		},
	}
}
