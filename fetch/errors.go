package fetch

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// classifyError sorts an error raised while running a query into a
// ConnectionError or a QueryError.
func classifyError(ctx context.Context, query string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectionFailure(ctx, err) {
		return errorutil.NewConnectionError(err)
	}
	return errorutil.NewQueryError(query, err)
}

func isConnectionFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception, 28 is invalid authorization and
		// 57P is operator intervention (e.g. shutdown).
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "28") ||
			strings.HasPrefix(pgErr.Code, "57P")
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1049, 1129, 1130:
			return true
		}
		return false
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 4060, 18452, 18456:
			return true
		}
		return false
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code() & 0xff
		return code == sqlite3.SQLITE_CANTOPEN || code == sqlite3.SQLITE_AUTH
	}
	return false
}
