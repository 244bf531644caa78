package cmdutil

import (
	"context"
	"time"

	"github.com/cockroachdb/dataexpect/config"
	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/dataexpect/retry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type dbConnConfig struct {
	url           string
	envFile       string
	retrySettings retry.Settings
}

var dbConnCfg = dbConnConfig{
	envFile: ".env",
	retrySettings: retry.Settings{
		InitialBackoff: time.Second,
		Multiplier:     2,
		MaxBackoff:     30 * time.Second,
		MaxRetries:     1,
	},
}

func RegisterDBConnFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&dbConnCfg.url,
		"url",
		"",
		"URL of the database; overrides DB_URL and the other DB_* environment variables",
	)
	cmd.PersistentFlags().StringVar(
		&dbConnCfg.envFile,
		"env-file",
		dbConnCfg.envFile,
		"dotenv file to read DB_* variables from, if it exists",
	)
	cmd.PersistentFlags().IntVar(
		&dbConnCfg.retrySettings.MaxRetries,
		"connect-max-retries",
		dbConnCfg.retrySettings.MaxRetries,
		"maximum number of connection attempts; 0 retries until the connection succeeds",
	)
}

// LoadConfig resolves the database configuration from flags and the
// environment.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(dbConnCfg.envFile)
	if err != nil {
		return nil, err
	}
	if dbConnCfg.url != "" {
		cfg.URL = dbConnCfg.url
	}
	return cfg, nil
}

// Connect opens a connection for cfg, retrying connection errors up to
// --connect-max-retries attempts.
func Connect(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (dbconn.Conn, error) {
	connStr, err := cfg.ConnString()
	if err != nil {
		return nil, err
	}
	var conn dbconn.Conn
	attempt := 0
	if err := retry.Do(ctx, dbConnCfg.retrySettings, errorutil.IsConnectionError, func(ctx context.Context) error {
		attempt++
		var err error
		conn, err = dbconn.Connect(ctx, "", connStr)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msgf("could not connect")
		}
		return err
	}); err != nil {
		return nil, err
	}
	logger.Debug().
		Str("dialect", conn.Dialect()).
		Str("id", string(conn.ID())).
		Msgf("connected")
	return conn, nil
}
