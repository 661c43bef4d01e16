package db

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/leozw/pdns-rest/internal/config"
)

// DSN returns the data source name for cfg. An explicit URL wins over the
// individual connection fields.
func DSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.URL != "" {
		return cfg.URL, nil
	}

	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host
		mc.DBName = cfg.Name
		return mc.FormatDSN(), nil
	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     cfg.Host,
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(cfg.MaxConnections)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}
