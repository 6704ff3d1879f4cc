// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Minio     MinioConfig
	Kafka     KafkaConfig
	Worker    WorkerConfig
	Auth      AuthConfig
	Watermark WatermarkConfig
}

type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"60s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"90s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DBConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `env:"DB_NAME" env-default:"brandmark"`
	SSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	MigrationsPath  string        `env:"DB_MIGRATIONS_PATH" env-default:"./migrations"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"brandmark"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

type KafkaConfig struct {
	Brokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	ProcessingTopic string   `env:"KAFKA_PROCESSING_TOPIC" env-default:"batch-processing"`
	ResultsTopic    string   `env:"KAFKA_RESULTS_TOPIC" env-default:"batch-processed"`
	GroupID         string   `env:"KAFKA_GROUP_ID" env-default:"brandmark-worker-group"`
}

type WorkerConfig struct {
	Concurrency int `env:"WORKER_CONCURRENCY" env-default:"2"`
}

type AuthConfig struct {
	// PasswordHash is the pre-configured reference hash: a bcrypt hash or
	// a SHA-256 hex digest of the app password. The server refuses to
	// start without it.
	PasswordHash string        `env:"APP_PASSWORD_HASH"`
	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL" env-default:"12h"`
}

type WatermarkConfig struct {
	// FontPath points at an optional TTF file; when empty or unreadable
	// the bundled Go Regular face is used.
	FontPath string `env:"WATERMARK_FONT_PATH"`
}

// MustLoad reads .env when present, then the process environment.
func MustLoad() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return &cfg, nil
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Backoff:  2,
	}
}

// ValidateAuth enforces the fatal-setup tier: processing must not start
// without the reference hash and token secret.
func (c *Config) ValidateAuth() error {
	if c.Auth.PasswordHash == "" {
		return fmt.Errorf("APP_PASSWORD_HASH is not configured")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not configured")
	}
	return nil
}
