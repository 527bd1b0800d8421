// Package config предоставялет структуры и функции для парсинга и загрузки конфига.
// Помимо инфраструктурных настроек здесь же лежит неизменяемая конфигурация движка
// доступа к функциям и подсказок (Engine): лимиты free/premium, пороги правил и cooldown.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения приложения.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Purchases               Purchases `yaml:"purchases"`
	Scheduler               Scheduler `yaml:"scheduler"`
	Engine                  Engine    `yaml:"engine"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки брокера. Пустой URL означает, что аналитика пишется только в лог.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	// AnalyticsBuffer размер очереди событий аналитики; при переполнении события отбрасываются.
	AnalyticsBuffer int `yaml:"analytics_buffer" env-default:"256"`
}

// SMTP настройки почтового транспорта для отправки напоминаний.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Purchases настройки провайдера покупок. Ключи задаются по платформам;
// отсутствие ключа для платформы означает, что premium на ней недоступен.
type Purchases struct {
	BaseURL  string            `yaml:"base_url" env-default:"https://api.revenuecat.com/v1"`
	APIKeys  map[string]string `yaml:"api_keys"`
	Timeout  time.Duration     `yaml:"timeout" env-default:"5s"`
	CacheTTL time.Duration     `yaml:"cache_ttl" env-default:"168h"`
}

// Scheduler настройки фонового планировщика напоминаний.
type Scheduler struct {
	Interval  time.Duration `yaml:"interval" env-default:"12h"`
	BatchSize int           `yaml:"batch_size" env-default:"500"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по пути и проверяет инварианты движка.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.Engine.applyDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// ErrInvalidEngine возвращается, если лимиты или пороги движка противоречат друг другу.
var ErrInvalidEngine = errors.New("invalid engine configuration")

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RabbitMQ:\n"+
			"  Configured: %t\n"+
			"Purchases:\n"+
			"  BaseURL: %s\n"+
			"  Platforms: %d\n"+
			"  Timeout: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.RabbitMQURL != "",
		c.Purchases.BaseURL,
		len(c.Purchases.APIKeys),
		c.Purchases.Timeout,
	)
}
