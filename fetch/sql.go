package fetch

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/dataexpect/dataset"
	mssql "github.com/microsoft/go-mssqldb"
)

// sqlQuerier is implemented by the database/sql backed connections.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Dialect() string
}

func fetchSQL(
	ctx context.Context, conn sqlQuerier, query string, opts fetchOpts,
) (*dataset.Dataset, error) {
	rows, err := conn.QueryContext(ctx, query, opts.args...)
	if err != nil {
		return nil, classifyError(ctx, query, err)
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, classifyError(ctx, query, err)
	}
	b := newBuilder(len(colTypes))
	dbTypeNames := make([]string, len(colTypes))
	for i, ct := range colTypes {
		dbTypeNames[i] = normalizeTypeName(ct.DatabaseTypeName())
		typ, known := typeForDatabaseTypeName(dbTypeNames[i])
		b.setColumn(i, ct.Name(), typ, known)
	}

	limiter := opts.limiter()
	for rows.Next() {
		if err := limiter.Wait(ctx); err != nil {
			return nil, classifyError(ctx, query, err)
		}
		vals := make([]any, len(colTypes))
		ptrs := make([]any, len(colTypes))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classifyError(ctx, query, err)
		}
		for i := range vals {
			vals[i] = normalizeSQLValue(dbTypeNames[i], b.types[i], vals[i])
		}
		b.appendRow(vals)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(ctx, query, err)
	}
	return b.finish(query)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// normalizeSQLValue maps a database/sql driver value onto the dataset value
// types, parsing textual values according to the column's type.
func normalizeSQLValue(dbTypeName string, typ dataset.Type, v any) any {
	switch v := v.(type) {
	case nil, bool, float64, time.Time:
		return v
	case int64:
		if typ == dataset.Boolean {
			return v != 0
		}
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		if dbTypeName == "UNIQUEIDENTIFIER" {
			var u mssql.UniqueIdentifier
			if err := u.Scan(v); err == nil {
				return u.String()
			}
		}
		if typ == dataset.Boolean && len(v) == 1 && (v[0] == 0 || v[0] == 1) {
			// MySQL BIT(1).
			return v[0] == 1
		}
		return parseText(typ, string(v))
	case string:
		if typ != dataset.String {
			return parseText(typ, v)
		}
		return v
	default:
		return dataset.Format(v)
	}
}

func parseText(typ dataset.Type, s string) any {
	switch typ {
	case dataset.Integer:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u
		}
	case dataset.Float:
		if d, _, err := apd.NewFromString(s); err == nil {
			return d
		}
	case dataset.Boolean:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case dataset.Timestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return s
}
