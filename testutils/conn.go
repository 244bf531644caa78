package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/stretchr/testify/require"
)

// envConnStr returns the connection string set in envVar, skipping the test
// when it is unset.
func envConnStr(t *testing.T, envVar string) string {
	t.Helper()
	connStr, ok := os.LookupEnv(envVar)
	if !ok || connStr == "" {
		t.Skipf("%s not set", envVar)
	}
	return connStr
}

func PGConnStr(t *testing.T) string {
	return envConnStr(t, "POSTGRES_URL")
}

func MySQLConnStr(t *testing.T) string {
	return envConnStr(t, "MYSQL_URL")
}

func MSSQLConnStr(t *testing.T) string {
	return envConnStr(t, "MSSQL_URL")
}

// SQLiteConnStr returns a connection string for a fresh sqlite database in a
// temporary directory.
func SQLiteConnStr(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return "sqlite://" + path
}

// Connect opens a connection for connStr which is closed when the test ends.
func Connect(t *testing.T, connStr string) dbconn.Conn {
	t.Helper()
	ctx := context.Background()
	conn, err := dbconn.Connect(ctx, "", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, conn.Close(ctx))
	})
	return conn
}

// CleanConnect recreates dbName on the server at connStr and returns a
// connection to it.
func CleanConnect(t *testing.T, connStr string, dbName string) dbconn.Conn {
	t.Helper()
	ctx := context.Background()
	conn, err := dbconn.TestOnlyCleanDatabase(ctx, "", connStr, dbName)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, conn.Close(ctx))
	})
	return conn
}

// Exec runs a series of semicolon separated statements against conn.
func Exec(t *testing.T, conn dbconn.Conn, stmts string) {
	t.Helper()
	ctx := context.Background()
	for _, stmt := range strings.Split(stmts, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		var err error
		switch conn := conn.(type) {
		case *dbconn.PGConn:
			_, err = conn.Exec(ctx, stmt)
		case *dbconn.MySQLConn:
			_, err = conn.ExecContext(ctx, stmt)
		case *dbconn.MSSQLConn:
			_, err = conn.ExecContext(ctx, stmt)
		case *dbconn.SQLiteConn:
			_, err = conn.ExecContext(ctx, stmt)
		default:
			t.Fatalf("unhandled Conn type: %T", conn)
		}
		require.NoError(t, err, fmt.Sprintf("executing %q", stmt))
	}
}
