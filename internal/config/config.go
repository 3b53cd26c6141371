package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не проходит валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Auth     AuthConfig     `toml:"auth"`
	Booking  BookingConfig  `toml:"booking"`
	Payments PaymentsConfig `toml:"payments"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Tracing  TracingConfig  `toml:"tracing"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// BookingConfig параметры движка бронирования
type BookingConfig struct {
	// Часовой пояс салона, в нем сравнивается время суток и считается "сегодня"
	Timezone string `toml:"timezone"`
	// Горизонт бронирования в календарных месяцах
	HorizonMonths int `toml:"horizon_months"`
	// Создавать запись без мастера, если никто не свободен
	AllowUnassignedBooking bool `toml:"allow_unassigned_booking"`
	// Сколько отмен в сутки разрешено клиенту
	DailyCancellationLimit int `toml:"daily_cancellation_limit"`
}

// Location возвращает часовой пояс салона
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

type PaymentsConfig struct {
	StripeSecretKey string `toml:"stripe_secret_key"`
	Timeout         int    `toml:"timeout"` // секунды
}

type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	RateLimit       int    `toml:"rate_limit"`
	RateLimitWindow int    `toml:"rate_limit_window"` // секунды
	FailOpen        bool   `toml:"fail_open"`
}

type KafkaConfig struct {
	Enabled      bool     `toml:"enabled"`
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	PollInterval int      `toml:"poll_interval"` // секунды
	BatchSize    int      `toml:"batch_size"`
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRatio  float64 `toml:"sample_ratio"`
}

// Load читает конфигурацию из TOML файла, заполняет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация по умолчанию; поля из файла перекрывают её
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "salon-booking-service",
		},
		Booking: BookingConfig{
			Timezone:               "UTC",
			HorizonMonths:          3,
			DailyCancellationLimit: 2,
		},
		Payments: PaymentsConfig{
			Timeout: 10,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			RateLimit:       30,
			RateLimitWindow: 60,
			FailOpen:        true,
		},
		Kafka: KafkaConfig{
			Topic:        "salon.appointments",
			PollInterval: 2,
			BatchSize:    50,
		},
		Tracing: TracingConfig{
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
	}
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}
	if c.Booking.HorizonMonths <= 0 {
		return fmt.Errorf("%w: booking.horizon_months must be positive", ErrInvalidConfig)
	}
	if c.Booking.DailyCancellationLimit <= 0 {
		return fmt.Errorf("%w: booking.daily_cancellation_limit must be positive", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka.brokers is required when kafka is enabled", ErrInvalidConfig)
	}
	return nil
}
