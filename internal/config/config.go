// Package config manages environment variables.
//
// It reads variables from the process environment (and from a `.env`
// file when one exists), loads them into structured Go types on top of
// compiled-in defaults, and validates that required values are present so
// they can be reused across the application runtime.
//
// Responsibilities:
//   - Provide defaults for every block (server, database, observability).
//   - Map env vars into the structured config.
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by every configuration variable.
//
// Keys are derived from the koanf path with dots replaced by underscores:
//
//	CRASHMAP_SERVER_PORT                              -> server.port
//	CRASHMAP_DATABASE_SSL_MODE                        -> database.ssl_mode
//	CRASHMAP_OBSERVABILITY_LOGGING_SLOW_QUERY_THRESHOLD -> observability.logging.slow_query_threshold
const EnvPrefix = "CRASHMAP_"

// ServiceName labels logs, traces and metrics emitted by this process.
const ServiceName = "crashmap"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary             `koanf:"primary" validate:"required"`
	Server        ServerConfig        `koanf:"server" validate:"required"`
	Database      DatabaseConfig      `koanf:"database" validate:"required"`
	Redis         RedisConfig         `koanf:"redis"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and to switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	ShutdownTimeout    int      `koanf:"shutdown_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// RateLimit is the sustained number of requests per second allowed per
	// client IP. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// SocketDir selects the connection mode: when set, the pool connects over
// the Unix socket found in that directory (e.g. /cloudsql/<instance>) and
// Host/Port are ignored.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required_without=SocketDir"`
	Port            int    `koanf:"port" validate:"required_without=SocketDir"`
	SocketDir       string `koanf:"socket_dir"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`

	// AutoMigrate applies the embedded schema at startup. The schema is
	// owned externally in production, so this is meant for local setups.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// UsesSocket reports whether the database is reached through a Unix socket.
func (d DatabaseConfig) UsesSocket() bool {
	return d.SocketDir != ""
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; empty disables collision update events.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// Default returns the configuration used before any env var is applied.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			ShutdownTimeout:    30,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          20,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "crashmap",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		Observability: *DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// Default(), validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Defaults first so every known key exists before env vars are mapped.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyMapper(k)), nil); err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Force service name and environment regardless of what the user set,
	// so tracing/logging sees consistent naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// envKeyMapper builds the env callback for koanf.
//
// Section and field names both contain underscores, so the env name alone
// is ambiguous. The keys already loaded from the defaults are used as the
// lookup table instead: CRASHMAP_DATABASE_SSL_MODE resolves to the known key
// database.ssl_mode. Unknown variables are ignored (empty key).
//
// List values (e.g. CORS origins) are comma separated.
func envKeyMapper(k *koanf.Koanf) func(key, value string) (string, any) {
	known := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(key, value string) (string, any) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		path, ok := known[name]
		if !ok {
			return "", nil
		}
		if _, isList := k.Get(path).([]string); isList {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return path, parts
		}
		return path, value
	}
}
