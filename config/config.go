package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv    string          `yaml:"app_env" env:"APP_ENV"`
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	GRPC      GRPCConfig      `yaml:"grpc" envPrefix:"GRPC_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Kafka     KafkaConfig     `yaml:"kafka" envPrefix:"KAFKA_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Flights   FlightsConfig   `yaml:"flights" envPrefix:"FLIGHTS_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"OTEL_"`
}

type HTTPConfig struct {
	Address    string   `yaml:"address" env:"ADDRESS"`
	SwaggerDir string   `yaml:"swagger_dir" env:"SWAGGER_DIR"`
	CORSOrigin []string `yaml:"cors_origin" env:"CORS_ORIGIN"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"ADDRESS"`
	// HealthInterval controls how often dependency checks refresh the gRPC health status.
	HealthIntervalSeconds int `yaml:"health_interval_seconds" env:"HEALTH_INTERVAL_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
	Migrate  bool   `yaml:"migrate" env:"MIGRATE"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MigrateURL is the golang-migrate pgx/v5 driver URL for the same database.
func (d DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"BROKERS"`
	BookingEventsTopic string   `yaml:"booking_events_topic" env:"BOOKING_EVENTS_TOPIC"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" env:"GROUP_ID"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type FlightsConfig struct {
	CacheTTLSeconds int   `yaml:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
	IDNode          int64 `yaml:"id_node" env:"ID_NODE"`
}

func (f FlightsConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name" env:"SERVICE_NAME"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"EXPORTER_OTLP_ENDPOINT"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadConfig reads the yaml file at path, then applies a .env file (when
// present) and process environment overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":5000"
	}
	if len(c.HTTP.CORSOrigin) == 0 {
		c.HTTP.CORSOrigin = []string{"http://localhost:3000"}
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.GRPC.HealthIntervalSeconds <= 0 {
		c.GRPC.HealthIntervalSeconds = 15
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Flights.CacheTTLSeconds <= 0 {
		c.Flights.CacheTTLSeconds = 1800
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "trypguide-api"
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Database.Host == "" {
		errs = append(errs, errors.New("missing config: database.host"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("missing config: database.name"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("missing config: redis.addr"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("missing config: auth.jwt_secret"))
	}
	if c.Flights.IDNode < 0 || c.Flights.IDNode > 1023 {
		errs = append(errs, errors.New("flights.id_node must be within 0-1023"))
	}
	return errors.Join(errs...)
}
