package dbconn

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
)

type MySQLConn struct {
	id      ID
	connStr string
	cfg     *mysql.Config
	*sql.DB
}

var _ Conn = (*MySQLConn)(nil)

func ConnectMySQL(ctx context.Context, id ID, connStr string) (*MySQLConn, error) {
	cfg, err := ParseMySQLConnStr(connStr)
	if err != nil {
		return nil, errorutil.NewConfigurationError(err)
	}
	if id == "" {
		id = ID(cfg.Addr)
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, errorutil.NewConfigurationError(err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errorutil.NewConnectionError(
			errors.CombineErrors(errors.Wrapf(err, "error connecting to %s", id), db.Close()),
		)
	}
	return &MySQLConn{id: id, connStr: connStr, cfg: cfg, DB: db}, nil
}

// ParseMySQLConnStr accepts either a go-sql-driver DSN (optionally prefixed
// with a scheme such as jdbc:mysql://) or a mysql:// URL.
func ParseMySQLConnStr(connStr string) (*mysql.Config, error) {
	byProtocol := strings.SplitN(connStr, "://", 2)
	if cfg, err := mysql.ParseDSN(byProtocol[len(byProtocol)-1]); err == nil {
		cfg.ParseTime = true
		return cfg, nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing mysql connection string")
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.User = "root"
	if uname := u.User; uname != nil {
		cfg.User = uname.Username()
		if p, ok := uname.Password(); ok {
			cfg.Passwd = p
		}
	}
	cfg.DBName = strings.TrimLeft(u.Path, "/")
	cfg.ParseTime = true
	for k, v := range u.Query() {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "tls":
			cfg.TLSConfig = v[0]
		case "parseTime":
			// Always on; timestamps must be decoded as time.Time.
		default:
			if cfg.Params == nil {
				cfg.Params = make(map[string]string)
			}
			cfg.Params[k] = v[0]
		}
	}
	return cfg, nil
}

func (c *MySQLConn) ID() ID {
	return c.id
}

func (c *MySQLConn) Close(ctx context.Context) error {
	return c.DB.Close()
}

func (c *MySQLConn) Clone(ctx context.Context) (Conn, error) {
	return ConnectMySQL(ctx, c.id, c.connStr)
}

func (c *MySQLConn) ConnStr() string {
	return c.connStr
}

func (c *MySQLConn) Dialect() string {
	return DialectMySQL
}
