// Package config loads server configuration from flags, environment
// variables, an optional config file and built-in defaults, in that order of
// precedence.
//
// Keys are dotted ("jwt.secret_key"); the matching environment variable is
// the upper-cased key with dots replaced by underscores (JWT_SECRET_KEY).
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	MinSecretLength = 16
	MinBcryptCost   = 4
	MaxBcryptCost   = 14
)

// Config is the fully resolved server configuration.
type Config struct {
	Port            int
	DB              DBConfig
	JWT             JWTConfig
	BcryptCost      int
	Log             LogConfig
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

type JWTConfig struct {
	SecretKey  string
	Expires    time.Duration
	HeaderName string
	HeaderType string
}

type LogConfig struct {
	Level  string
	Format string
}

// flag name -> config key
var flagKeys = map[string]string{
	"port":      "port",
	"db-driver": "db.driver",
	"db-dsn":    "db.dsn",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "data/inventory.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("jwt.access_token_expires", "40m")
	v.SetDefault("jwt.header_name", "Authorization")
	v.SetDefault("jwt.header_type", "Bearer")
	v.SetDefault("bcrypt.cost", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("shutdown_timeout", "30s")
}

// RegisterFlags adds the configuration flags to cmd. They are persistent so
// every subcommand accepts them.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "path to a YAML, JSON or TOML config file")
	f.Int("port", 8080, "HTTP listen port")
	f.String("db-driver", DriverSQLite, "database driver (sqlite or postgres)")
	f.String("db-dsn", "data/inventory.db", "database file path or connection URL")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
}

// Load resolves the configuration for cmd and validates it.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	for name, key := range flagKeys {
		if fl := flags.Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	expires, err := parseDuration(v.GetString("jwt.access_token_expires"))
	if err != nil {
		return Config{}, fmt.Errorf("jwt.access_token_expires: %w", err)
	}
	shutdown, err := parseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("shutdown_timeout: %w", err)
	}

	cfg := Config{
		Port: v.GetInt("port"),
		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("db.driver")),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
		},
		JWT: JWTConfig{
			SecretKey:  v.GetString("jwt.secret_key"),
			Expires:    expires,
			HeaderName: v.GetString("jwt.header_name"),
			HeaderType: v.GetString("jwt.header_type"),
		},
		BcryptCost: v.GetInt("bcrypt.cost"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		ShutdownTimeout: shutdown,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseDuration accepts Go duration strings ("40m") and bare integers, which
// are read as seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown db.driver %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn is required"))
	}
	if c.DB.MaxOpenConns < 1 {
		errs = append(errs, errors.New("db.max_open_conns must be positive"))
	}

	if len(c.JWT.SecretKey) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret_key must be at least %d characters", MinSecretLength))
	}
	if c.JWT.Expires <= 0 {
		errs = append(errs, errors.New("jwt.access_token_expires must be positive"))
	}
	if c.JWT.HeaderName == "" {
		errs = append(errs, errors.New("jwt.header_name is required"))
	}

	if c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost {
		errs = append(errs, fmt.Errorf("bcrypt.cost must be between %d and %d", MinBcryptCost, MaxBcryptCost))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}
