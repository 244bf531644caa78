// Package config resolves database connection settings from the
// environment.
package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
)

type Config struct {
	URL      string        `env:"DB_URL" env-description:"full connection URL, overriding every other setting"`
	Driver   string        `env:"DB_DRIVER" env-default:"sqlserver" env-description:"one of sqlserver, postgres, mysql or sqlite"`
	Server   string        `env:"DB_SERVER" env-description:"database host, optionally with :port or \\instance"`
	Port     int           `env:"DB_PORT" env-description:"database port"`
	Database string        `env:"DB_DATABASE" env-description:"database name, or file path for sqlite"`
	User     string        `env:"DB_USER" env-description:"user name; SQL Server uses integrated authentication if unset"`
	Password string        `env:"DB_PASSWORD" env-description:"password"`
	Params   string        `env:"DB_PARAMS" env-description:"extra connection parameters as k=v&k2=v2"`
	Timeout  time.Duration `env:"DB_TIMEOUT" env-default:"30s" env-description:"timeout for fetching a dataset"`
}

// Load reads the configuration from the environment. If envFile names an
// existing dotenv file, its variables are exported first.
func Load(envFile string) (*Config, error) {
	cfg := &Config{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := cleanenv.ReadConfig(envFile, cfg); err != nil {
				return nil, errorutil.NewConfigurationError(errors.Wrapf(err, "error reading %s", envFile))
			}
			return cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errorutil.NewConfigurationError(errors.Wrapf(err, "error reading environment"))
	}
	return cfg, nil
}

// Description lists the environment variables Load reads.
func Description() string {
	header := "Environment variables:"
	desc, err := cleanenv.GetDescription(&Config{}, &header)
	if err != nil {
		return ""
	}
	return desc
}

// NormalizeDriver maps a driver name, including ODBC driver names such as
// "ODBC Driver 17 for SQL Server", to one of the Driver constants.
func NormalizeDriver(driver string) (string, error) {
	d := strings.ToLower(strings.Trim(strings.TrimSpace(driver), "{}"))
	switch {
	case strings.Contains(d, "sql server"), d == "sqlserver", d == "mssql":
		return DriverSQLServer, nil
	case d == "postgres", d == "postgresql", d == "pg", d == "cockroachdb":
		return DriverPostgres, nil
	case d == "mysql":
		return DriverMySQL, nil
	case d == "sqlite", d == "sqlite3":
		return DriverSQLite, nil
	}
	return "", errorutil.NewConfigurationErrorf("unsupported DB_DRIVER %q", driver)
}

// ConnString builds the connection string for the configured driver. Missing
// settings are reported as a ConfigurationError.
func (c *Config) ConnString() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	driver, err := NormalizeDriver(c.Driver)
	if err != nil {
		return "", err
	}
	var missing []string
	if c.Server == "" && driver != DriverSQLite {
		missing = append(missing, "DB_SERVER")
	}
	if c.Database == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if len(missing) > 0 {
		return "", errorutil.NewConfigurationErrorf(
			"missing %s (or DB_URL)", strings.Join(missing, ", "),
		)
	}
	if driver == DriverSQLite {
		return "sqlite://" + c.Database, nil
	}

	params, err := url.ParseQuery(c.Params)
	if err != nil {
		return "", errorutil.NewConfigurationError(errors.Wrapf(err, "invalid DB_PARAMS"))
	}
	host := c.Server
	var instance string
	if driver == DriverSQLServer {
		host, instance, _ = strings.Cut(host, `\`)
	}
	if _, _, err := net.SplitHostPort(host); err != nil && c.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(c.Port))
	}
	u := &url.URL{Scheme: driver, Host: host}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	switch driver {
	case DriverSQLServer:
		if instance != "" {
			u.Path = "/" + instance
		}
		params.Set("database", c.Database)
	default:
		u.Path = "/" + c.Database
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
