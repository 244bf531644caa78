package dbconn

import (
	"context"
	"strings"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

type PGConn struct {
	id ID
	*pgx.Conn
	version     string
	connStr     string
	isCockroach bool
}

var _ Conn = (*PGConn)(nil)

func NewPGConn(id ID, conn *pgx.Conn, connStr string, version string) *PGConn {
	return &PGConn{
		id:          id,
		Conn:        conn,
		version:     version,
		connStr:     connStr,
		isCockroach: strings.Contains(version, "CockroachDB"),
	}
}

func ConnectPG(ctx context.Context, id ID, connStr string) (*PGConn, error) {
	cfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, errorutil.NewConfigurationError(errors.Wrapf(err, "error parsing postgres url"))
	}
	return ConnectPGConfig(ctx, id, cfg)
}

func ConnectPGConfig(ctx context.Context, id ID, cfg *pgx.ConnConfig) (*PGConn, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errorutil.NewConnectionError(errors.Wrapf(err, "error connecting to %s", id))
	}
	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return nil, errorutil.NewConnectionError(
			errors.CombineErrors(errors.Wrapf(err, "error fetching version"), conn.Close(ctx)),
		)
	}
	return NewPGConn(id, conn, cfg.ConnString(), version), nil
}

func (c *PGConn) ID() ID {
	return c.id
}

func (c *PGConn) IsCockroach() bool {
	return c.isCockroach
}

func (c *PGConn) Clone(ctx context.Context) (Conn, error) {
	return ConnectPGConfig(ctx, c.id, c.Config())
}

func (c *PGConn) ConnStr() string {
	return c.connStr
}

func (c *PGConn) Dialect() string {
	if c.IsCockroach() {
		return DialectCockroachDB
	}
	return DialectPostgreSQL
}
