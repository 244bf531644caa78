package dbconn

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

type SQLiteConn struct {
	id      ID
	connStr string
	*sql.DB
}

var _ Conn = (*SQLiteConn)(nil)

// ConnectSQLite opens an existing sqlite database. Both sqlite://<path> and
// file:<path> forms are accepted. A missing file is a ConnectionError unless
// the DSN is in-memory or asks for mode=rwc.
func ConnectSQLite(ctx context.Context, id ID, connStr string) (*SQLiteConn, error) {
	dsn := strings.TrimPrefix(connStr, "sqlite://")
	if dsn == "" {
		return nil, errorutil.NewConfigurationErrorf("sqlite connection string has no path")
	}
	if id == "" {
		id = "sqlite"
	}
	if path := sqliteFilePath(dsn); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errorutil.NewConnectionError(errors.Wrapf(err, "error opening %s", id))
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errorutil.NewConfigurationError(err)
	}
	// An in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, errorutil.NewConnectionError(
			errors.CombineErrors(errors.Wrapf(err, "error opening %s", id), db.Close()),
		)
	}
	return &SQLiteConn{id: id, connStr: connStr, DB: db}, nil
}

// sqliteFilePath returns the database file dsn refers to, or "" if the
// driver may create it.
func sqliteFilePath(dsn string) string {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return ""
	}
	for _, p := range strings.Split(query, "&") {
		if p == "mode=memory" || p == "mode=rwc" {
			return ""
		}
	}
	return path
}

func (c *SQLiteConn) ID() ID {
	return c.id
}

func (c *SQLiteConn) Close(ctx context.Context) error {
	return c.DB.Close()
}

func (c *SQLiteConn) Clone(ctx context.Context) (Conn, error) {
	return ConnectSQLite(ctx, c.id, c.connStr)
}

func (c *SQLiteConn) ConnStr() string {
	return c.connStr
}

func (c *SQLiteConn) Dialect() string {
	return DialectSQLite
}
