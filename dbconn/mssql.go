package dbconn

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	mssql "github.com/microsoft/go-mssqldb"
)

type MSSQLConn struct {
	id      ID
	connStr string
	*sql.DB
}

var _ Conn = (*MSSQLConn)(nil)

// ConnectMSSQL connects to SQL Server using a sqlserver:// URL. Without a
// user in the URL the driver uses integrated (trusted) authentication.
func ConnectMSSQL(ctx context.Context, id ID, connStr string) (*MSSQLConn, error) {
	connector, err := mssql.NewConnector(connStr)
	if err != nil {
		return nil, errorutil.NewConfigurationError(errors.Wrapf(err, "error parsing sqlserver url"))
	}
	if id == "" {
		id = "sqlserver"
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		return nil, errorutil.NewConnectionError(
			errors.CombineErrors(errors.Wrapf(err, "error connecting to %s", id), db.Close()),
		)
	}
	return &MSSQLConn{id: id, connStr: connStr, DB: db}, nil
}

func (c *MSSQLConn) ID() ID {
	return c.id
}

func (c *MSSQLConn) Close(ctx context.Context) error {
	return c.DB.Close()
}

func (c *MSSQLConn) Clone(ctx context.Context) (Conn, error) {
	return ConnectMSSQL(ctx, c.id, c.connStr)
}

func (c *MSSQLConn) ConnStr() string {
	return c.connStr
}

func (c *MSSQLConn) Dialect() string {
	return DialectSQLServer
}
