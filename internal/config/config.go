// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string   `yaml:"env"`
	StorageConnectionString string   `yaml:"storage_connection_string"`
	MigrationsPath          string   `yaml:"migrations_path" env-default:"./migrations"`
	RabbitMQURL             string   `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries      int      `yaml:"rabbitmq_max_retries" env-default:"5"`
	ResetLinkBase           string   `yaml:"reset_link_base"` // База ссылки сброса пароля в письме
	CORSAllowedOrigins      []string `yaml:"cors_allowed_origins"`

	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"5s"`

	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PaymentProvider         `yaml:"payment_provider"`
	SMTP                    `yaml:"smtp"`
	AvatarStore             `yaml:"avatar_store"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"72h"`
}

// PaymentProvider настройки платежного провайдера.
// KeyID отдается клиенту для виджета оплаты, KeySecret используется
// для basic-авторизации запросов к API и проверки подписей платежей.
type PaymentProvider struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
	PlanID    string `yaml:"plan_id"` // План регулярной подписки
	APIURL    string `yaml:"api_url" env-default:"https://api.razorpay.com/v1"`
}

// SMTP настройки почтового транспорта для писем сброса пароля
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// AvatarStore настройки внешнего хранилища аватаров
type AvatarStore struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`        // Для локального S3-совместимого хранилища
	PublicBaseURL string `yaml:"public_base_url"` // База публичных ссылок на объекты
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
