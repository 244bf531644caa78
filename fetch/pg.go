package fetch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
)

func fetchPG(
	ctx context.Context, conn *dbconn.PGConn, query string, opts fetchOpts,
) (*dataset.Dataset, error) {
	rows, err := conn.Query(ctx, query, opts.args...)
	if err != nil {
		return nil, classifyError(ctx, query, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	b := newBuilder(len(fds))
	for i, fd := range fds {
		b.setColumn(i, fd.Name, typeForOID(oid.Oid(fd.DataTypeOID)), true)
	}
	limiter := opts.limiter()
	for rows.Next() {
		if err := limiter.Wait(ctx); err != nil {
			return nil, classifyError(ctx, query, err)
		}
		vals, err := rows.Values()
		if err != nil {
			return nil, classifyError(ctx, query, err)
		}
		for i := range vals {
			vals[i] = normalizePGValue(vals[i])
		}
		b.appendRow(vals)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(ctx, query, err)
	}
	return b.finish(query)
}

func typeForOID(o oid.Oid) dataset.Type {
	switch o {
	case oid.T_int2, oid.T_int4, oid.T_int8, oid.T_oid:
		return dataset.Integer
	case oid.T_float4, oid.T_float8, oid.T_numeric:
		return dataset.Float
	case oid.T_bool:
		return dataset.Boolean
	case oid.T_timestamp, oid.T_timestamptz, oid.T_date:
		return dataset.Timestamp
	default:
		return dataset.String
	}
}

// normalizePGValue maps the values pgx decodes onto the dataset value types.
func normalizePGValue(v any) any {
	switch v := v.(type) {
	case nil, string, bool, int64, float64, time.Time:
		return v
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	case pgtype.Numeric:
		return numericToDecimal(v)
	case [16]byte:
		return uuid.UUID(v).String()
	case []byte:
		return `\x` + hex.EncodeToString(v)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numericToDecimal(n pgtype.Numeric) any {
	switch {
	case !n.Valid:
		return nil
	case n.NaN:
		return &apd.Decimal{Form: apd.NaN}
	case n.InfinityModifier == pgtype.Infinity:
		return &apd.Decimal{Form: apd.Infinite}
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return &apd.Decimal{Form: apd.Infinite, Negative: true}
	}
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(n.Int), n.Exp)
}
