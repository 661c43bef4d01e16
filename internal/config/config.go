package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	RateLimit       float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	User           string
	Password       string
	Host           string
	Name           string
	MaxConnections int
	MaxIdleConns   int
	AutoMigrate    bool
}

type LogConfig struct {
	Dir   string
	Level string
}

type AuthConfig struct {
	JWTSecret string
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

type ErrMissingConfigParameter struct {
	Name string
}

func (e *ErrMissingConfigParameter) Error() string {
	return fmt.Sprintf("missing required config parameter %q", e.Name)
}

// Load reads config.yaml from the working directory or ./config, then
// applies PDNS_* environment overrides. A .env file is loaded first when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("PDNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return load(v)
}

// LoadFile reads the given config file instead of searching for one.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PDNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Log.Level = strings.ToUpper(cfg.Log.Level)

	return &cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.ratelimit", 0)
	v.SetDefault("server.ratelimitburst", 20)
	v.SetDefault("server.shutdowntimeout", "30s")
	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.url", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.maxconnections", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.automigrate", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "WARN")
	v.SetDefault("auth.jwtsecret", "")
}

// Validate checks that the selected driver has enough to connect with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.URL != "" {
		return nil
	}

	switch "" {
	case c.Database.Host:
		return &ErrMissingConfigParameter{Name: "database.host"}
	case c.Database.Name:
		return &ErrMissingConfigParameter{Name: "database.name"}
	}

	return nil
}
