// Package fetch materializes query results into datasets.
package fetch

import (
	"context"
	"time"

	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Opt func(*fetchOpts)

type fetchOpts struct {
	logger        zerolog.Logger
	args          []any
	rowsPerSecond int
}

func (o fetchOpts) rateLimit() rate.Limit {
	if o.rowsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(o.rowsPerSecond)
}

func (o fetchOpts) limiter() *rate.Limiter {
	burst := o.rowsPerSecond
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(o.rateLimit(), burst)
}

func WithLogger(logger zerolog.Logger) Opt {
	return func(o *fetchOpts) {
		o.logger = logger
	}
}

// WithArgs sets the query's placeholder arguments.
func WithArgs(args ...any) Opt {
	return func(o *fetchOpts) {
		o.args = args
	}
}

// WithRowsPerSecond caps how fast rows are read from the store.
func WithRowsPerSecond(n int) Opt {
	return func(o *fetchOpts) {
		o.rowsPerSecond = n
	}
}

// Fetch opens a connection for connStr, runs query and returns the full
// result as a dataset before closing the connection. No partial dataset is
// returned on error.
func Fetch(ctx context.Context, connStr string, query string, inOpts ...Opt) (*dataset.Dataset, error) {
	conn, err := dbconn.Connect(ctx, "", connStr)
	if err != nil {
		return nil, err
	}
	ds, err := FetchConn(ctx, conn, query, inOpts...)
	if closeErr := conn.Close(ctx); closeErr != nil && err == nil {
		logger := makeOpts(inOpts).logger
		logger.Warn().Err(closeErr).Msgf("error closing connection")
	}
	return ds, err
}

// FetchConn runs query on an open connection and returns the full result as
// a dataset.
func FetchConn(
	ctx context.Context, conn dbconn.Conn, query string, inOpts ...Opt,
) (*dataset.Dataset, error) {
	opts := makeOpts(inOpts)
	start := time.Now()

	var ds *dataset.Dataset
	var err error
	switch conn := conn.(type) {
	case *dbconn.PGConn:
		ds, err = fetchPG(ctx, conn, query, opts)
	case sqlQuerier:
		ds, err = fetchSQL(ctx, conn, query, opts)
	default:
		return nil, errors.AssertionFailedf("unsupported connection type %T", conn)
	}
	if err != nil {
		return nil, err
	}
	opts.logger.Debug().
		Str("dialect", conn.Dialect()).
		Int("rows", ds.NumRows()).
		Int("columns", ds.NumColumns()).
		Dur("took", time.Since(start)).
		Msgf("fetched dataset")
	return ds, nil
}

func makeOpts(inOpts []Opt) fetchOpts {
	opts := fetchOpts{logger: zerolog.Nop()}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	return opts
}

// builder accumulates rows column by column.
type builder struct {
	names  []string
	types  []dataset.Type
	known  []bool
	values [][]any
}

func newBuilder(numCols int) *builder {
	return &builder{
		names:  make([]string, numCols),
		types:  make([]dataset.Type, numCols),
		known:  make([]bool, numCols),
		values: make([][]any, numCols),
	}
}

func (b *builder) setColumn(i int, name string, typ dataset.Type, known bool) {
	b.names[i] = name
	b.types[i] = typ
	b.known[i] = known
}

func (b *builder) appendRow(row []any) {
	for i, v := range row {
		b.values[i] = append(b.values[i], v)
	}
}

func (b *builder) finish(query string) (*dataset.Dataset, error) {
	cols := make([]dataset.Column, len(b.names))
	for i := range b.names {
		typ := b.types[i]
		if !b.known[i] {
			// Columns without a declared type (e.g. sqlite expressions) take
			// the type of their first non-null value.
			typ = dataset.String
			for _, v := range b.values[i] {
				if v != nil {
					typ = dataset.TypeOf(v)
					break
				}
			}
		}
		cols[i] = dataset.NewColumn(b.names[i], typ, b.values[i]...)
	}
	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, errorutil.NewQueryError(query, errors.Wrapf(err, "invalid result set"))
	}
	return ds, nil
}
