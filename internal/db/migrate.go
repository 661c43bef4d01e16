package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/leozw/pdns-rest/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for the configured
// driver. It owns its own connection, closed by Close.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(cfg config.DatabaseConfig) (*Migrator, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	conn, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch cfg.Driver {
	case config.DriverPostgres:
		driver, err = migratepostgres.WithInstance(conn.DB, &migratepostgres.Config{})
	case config.DriverMySQL:
		driver, err = migratemysql.WithInstance(conn.DB, &migratemysql.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. Being up to date is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back n migrations, or all of them when n <= 0.
func (m *Migrator) Down(n int) error {
	var err error
	if n > 0 {
		err = m.m.Steps(-n)
	} else {
		err = m.m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
