package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"
)

var (
	ErrParsingEnvironmentFailed = errors.New("parsing the environment failed")
	ErrUnknownEngine            = errors.New("unknown engine")
	ErrUnknownPostgresDriver    = errors.New("unknown postgres driver")
)

// Config is the process configuration.
type Config struct {
	Engine     string         `env:"ENGINE" envDefault:"sqlite"`
	SQLitePath string         `env:"SQLITE_PATH" envDefault:"dcb.db"`
	Postgres   PostgresConfig `envPrefix:"POSTGRES_"`
	Retry      RetryConfig    `envPrefix:"RETRY_"`
	Snapshots  bool           `env:"SNAPSHOTS" envDefault:"true"`
	NATS       NATSConfig     `envPrefix:"NATS_"`
	OTLP       OTLPConfig     `envPrefix:"OTLP_"`

	// MetricsAddr is the listen address of the Prometheus endpoint, empty disables it.
	MetricsAddr string     `env:"METRICS_ADDR"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// PostgresConfig describes the connection. DSN, when set, wins over the single fields.
type PostgresConfig struct {
	DSN        string        `env:"DSN"`
	ReplicaDSN string        `env:"REPLICA_DSN"`
	Host       string        `env:"HOST" envDefault:"localhost"`
	Port       int           `env:"PORT" envDefault:"5432"`
	User       string        `env:"USER" envDefault:"dcb"`
	Password   string        `env:"PASSWORD"`
	Database   string        `env:"DATABASE" envDefault:"eventstore"`
	SSLMode    string        `env:"SSLMODE" envDefault:"disable"`
	Driver     string        `env:"DRIVER" envDefault:"pgx"`
	MaxConns   int32         `env:"MAX_CONNS" envDefault:"8"`
	MinConns   int32         `env:"MIN_CONNS" envDefault:"2"`
	ConnectTTL time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
}

type RetryConfig struct {
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	BaseDelay    time.Duration `env:"BASE_DELAY" envDefault:"10ms"`
	JitterFactor float64       `env:"JITTER" envDefault:"0.1"`
}

type NATSConfig struct {
	URL           string `env:"URL"`
	SubjectPrefix string `env:"SUBJECT_PREFIX" envDefault:"dcb.events"`
	Stream        string `env:"STREAM" envDefault:"DCB_EVENTS"`
}

// OTLPConfig enables OpenTelemetry export over gRPC. An empty Endpoint disables it.
type OTLPConfig struct {
	Endpoint       string        `env:"ENDPOINT"`
	Insecure       bool          `env:"INSECURE" envDefault:"true"`
	ServiceName    string        `env:"SERVICE_NAME" envDefault:"dcbctl"`
	MetricInterval time.Duration `env:"METRIC_INTERVAL" envDefault:"10s"`
}

// Load parses the DCB_ variables of the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: "DCB_"})
}

// LoadFrom parses the DCB_ variables of environment instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Prefix: "DCB_", Environment: environment})
}

func parse(options env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, options); err != nil {
		return Config{}, errors.Join(ErrParsingEnvironmentFailed, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineMemory, EngineSQLite, EnginePostgres:
	default:
		return errors.Join(ErrUnknownEngine, errors.New(c.Engine))
	}

	switch c.Postgres.Driver {
	case DriverPGX, DriverSQL, DriverSQLX:
	default:
		return errors.Join(ErrUnknownPostgresDriver, errors.New(c.Postgres.Driver))
	}

	return nil
}
