package dbconn

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/lexbase"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
)

type ID string

const (
	DialectPostgreSQL  = "PostgreSQL"
	DialectCockroachDB = "CockroachDB"
	DialectMySQL       = "MySQL"
	DialectSQLServer   = "SQL Server"
	DialectSQLite      = "SQLite"
)

type Conn interface {
	ID() ID
	// Close closes the connection.
	Close(ctx context.Context) error
	// Clone creates a new Conn with the same underlying connections arguments.
	Clone(ctx context.Context) (Conn, error)
	ConnStr() string
	Dialect() string
}

// Connect opens a connection for the given connection string, choosing the
// driver from its scheme. A missing or unsupported connection string is a
// configuration error; failing to reach the database is a connection error.
func Connect(ctx context.Context, preferredID ID, connStr string) (Conn, error) {
	id := preferredID
	if len(connStr) == 0 {
		return nil, errorutil.NewConfigurationErrorf("empty connection string")
	}

	before := strings.SplitN(connStr, "://", 2)

	switch {
	case strings.Contains(before[0], "postgres"):
		if id == "" {
			u, err := url.Parse(connStr)
			if err != nil {
				return nil, errorutil.NewConfigurationError(
					errors.Wrapf(err, "unable to parse postgres url"),
				)
			}
			id = ID(u.Hostname() + ":" + u.Port())
		}
		return ConnectPG(ctx, id, connStr)
	case strings.Contains(before[0], "mysql"), strings.Contains(connStr, "@tcp("):
		return ConnectMySQL(ctx, id, connStr)
	case before[0] == "sqlserver":
		return ConnectMSSQL(ctx, id, connStr)
	case before[0] == "sqlite", strings.HasPrefix(connStr, "file:"):
		return ConnectSQLite(ctx, id, connStr)
	}
	return nil, errorutil.NewConfigurationErrorf("unrecognised scheme %s", before[0])
}

// TestOnlyCleanDatabase returns a connection to a clean database.
// This is recommended for test use only
func TestOnlyCleanDatabase(ctx context.Context, id ID, connStr string, dbName string) (Conn, error) {
	c, err := Connect(ctx, id, connStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close(ctx) }()

	switch c := c.(type) {
	case *PGConn:
		if _, err := c.Exec(ctx, "DROP DATABASE IF EXISTS "+lexbase.EscapeSQLIdent(dbName)); err != nil {
			return nil, err
		}
		if _, err := c.Exec(ctx, "CREATE DATABASE "+lexbase.EscapeSQLIdent(dbName)); err != nil {
			return nil, err
		}
		cfgCopy := c.Config().Copy()
		cfgCopy.Database = dbName
		return ConnectPGConfig(ctx, c.id, cfgCopy)
	case *MySQLConn:
		if _, err := c.ExecContext(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
			return nil, err
		}
		if _, err := c.ExecContext(ctx, "CREATE DATABASE "+dbName); err != nil {
			return nil, err
		}
		cfgCopy := c.cfg.Clone()
		cfgCopy.DBName = dbName
		return ConnectMySQL(ctx, c.id, cfgCopy.FormatDSN())
	case *MSSQLConn:
		if _, err := c.ExecContext(ctx, "DROP DATABASE IF EXISTS "+quoteMSSQLIdent(dbName)); err != nil {
			return nil, err
		}
		if _, err := c.ExecContext(ctx, "CREATE DATABASE "+quoteMSSQLIdent(dbName)); err != nil {
			return nil, err
		}
		u, err := url.Parse(c.connStr)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("database", dbName)
		u.RawQuery = q.Encode()
		return ConnectMSSQL(ctx, c.id, u.String())
	}
	return nil, errors.AssertionFailedf("clean database not supported for %T", c)
}

func quoteMSSQLIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
