package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leozw/pdns-rest/internal/config"
	"github.com/leozw/pdns-rest/internal/db"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manages the domains, records and supermasters schema",
	Long: `Applies or rolls back the embedded schema migrations against the
database configured for the API server.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [n]",
	Short: "Rolls back n migrations, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		if len(args) == 1 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
		}
		return withMigrator(func(m *db.Migrator) error {
			if err := m.Down(n); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *db.Migrator) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default: ./config.yaml)")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func withMigrator(fn func(m *db.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return fmt.Errorf("driver %q has no schema to migrate", cfg.Database.Driver)
	}

	m, err := db.NewMigrator(cfg.Database)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func printVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("version %d\n", version)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
