package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	PostgresConn string `mapstructure:"POSTGRES_CONN"`
	PostgresUser string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost string `mapstructure:"POSTGRES_HOST"`
	PostgresPort string `mapstructure:"POSTGRES_PORT"`
	PostgresDB   string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL string `mapstructure:"MIGRATION_URL"`

	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int           `mapstructure:"REDIS_DB"`
	AvailabilityCacheTTL time.Duration `mapstructure:"AVAILABILITY_CACHE_TTL"`
	AvailabilityMinYear  int           `mapstructure:"AVAILABILITY_MIN_YEAR"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	PushAPIURL      string `mapstructure:"PUSH_API_URL"`
	PushAppID       string `mapstructure:"PUSH_APP_ID"`
	PushAPIKey      string `mapstructure:"PUSH_API_KEY"`
	NotifyWorkers   int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueSize int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":         "0.0.0.0:8080",
	"REQUEST_TIMEOUT":        5 * time.Second,
	"LOG_LEVEL":              "info",
	"MIGRATION_URL":          "file://migrations",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_DB":               0,
	"AVAILABILITY_CACHE_TTL": 10 * time.Minute,
	"AVAILABILITY_MIN_YEAR":  2021,
	"PUSH_API_URL":           "https://onesignal.com/api/v1/notifications",
	"NOTIFY_WORKERS":         4,
	"NOTIFY_QUEUE_SIZE":      1000,
}

// LoadConfig загружает конфигурацию из файла, переменные окружения имеют приоритет
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys() {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}
	err = v.Unmarshal(&cfg)
	return
}

// envKeys перечисляет ключи, которые можно задать переменными окружения.
func envKeys() []string {
	return []string{
		"SERVER_ADDRESS", "REQUEST_TIMEOUT", "LOG_LEVEL",
		"POSTGRES_CONN", "POSTGRES_USERNAME", "POSTGRES_PASSWORD", "POSTGRES_HOST",
		"POSTGRES_PORT", "POSTGRES_DATABASE", "MIGRATION_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "AVAILABILITY_CACHE_TTL", "AVAILABILITY_MIN_YEAR",
		"JWT_SECRET",
		"PUSH_API_URL", "PUSH_APP_ID", "PUSH_API_KEY", "NOTIFY_WORKERS", "NOTIFY_QUEUE_SIZE",
	}
}
