package cmdutil

import (
	"github.com/cockroachdb/dataexpect/dbtable"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/spf13/cobra"
)

type queryConfig struct {
	query         string
	table         string
	selectOpts    dbtable.SelectOpts
	rowsPerSecond int
}

var queryCfg = queryConfig{
	selectOpts: dbtable.SelectOpts{Limit: 50},
}

func RegisterQueryFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&queryCfg.query,
		"query",
		"",
		"query whose result is fetched; takes precedence over --table",
	)
	cmd.PersistentFlags().StringVar(
		&queryCfg.table,
		"table",
		"",
		"[schema.]table to fetch rows from",
	)
	cmd.PersistentFlags().StringVar(
		&queryCfg.selectOpts.OrderBy,
		"order-by",
		"",
		"column to order --table rows by",
	)
	cmd.PersistentFlags().BoolVar(
		&queryCfg.selectOpts.Desc,
		"desc",
		false,
		"order --table rows in descending order",
	)
	cmd.PersistentFlags().IntVar(
		&queryCfg.selectOpts.Limit,
		"limit",
		queryCfg.selectOpts.Limit,
		"maximum number of --table rows to fetch; 0 fetches every row",
	)
	cmd.PersistentFlags().IntVar(
		&queryCfg.rowsPerSecond,
		"rows-per-second",
		0,
		"if set, maximum number of rows read per second",
	)
}

// Query returns the query to run against a connection of the given dialect.
func Query(dialect string) (string, error) {
	if queryCfg.query != "" {
		return queryCfg.query, nil
	}
	if queryCfg.table == "" {
		return "", errorutil.NewConfigurationErrorf("one of --query or --table must be set")
	}
	name, err := dbtable.ParseName(queryCfg.table)
	if err != nil {
		return "", errorutil.NewConfigurationError(err)
	}
	q, err := name.SelectQuery(dialect, queryCfg.selectOpts)
	if err != nil {
		return "", errorutil.NewConfigurationError(err)
	}
	return q, nil
}

func RowsPerSecond() int {
	return queryCfg.rowsPerSecond
}
