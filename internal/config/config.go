// Package config загружает настройки сервиса из переменных окружения.
//
// Переменные с префиксом FABLINK_, вложенность через двойное подчёркивание:
// FABLINK_DATABASE__URL -> database.url. Файл .env подхватывается автоматически.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FABLINK_"

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Redis    RedisConfig    `koanf:"redis"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Auth     AuthConfig     `koanf:"auth" validate:"required"`
	Log      LogConfig      `koanf:"log"`
}

type Primary struct {
	Env      string `koanf:"env" validate:"required"`
	TimeZone string `koanf:"time_zone" validate:"required"`
}

type ServerConfig struct {
	Address            string        `koanf:"address" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	IdleTimeout        time.Duration `koanf:"idle_timeout"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	// запросов в секунду на IP для входа и регистрации
	AuthRateLimit float64 `koanf:"auth_rate_limit"`
	AuthRateBurst int     `koanf:"auth_rate_burst"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// RedisConfig пустой адрес означает хранение отозванных токенов в памяти
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type MongoConfig struct {
	Enabled            bool          `koanf:"enabled"`
	URI                string        `koanf:"uri" validate:"required_if=Enabled true"`
	Database           string        `koanf:"database" validate:"required_if=Enabled true"`
	DesignerCollection string        `koanf:"designer_collection"`
	FactoryCollection  string        `koanf:"factory_collection"`
	Timeout            time.Duration `koanf:"timeout"`
	// cron-выражение синхронизации зеркала, пустое отключает
	SyncSchedule string `koanf:"sync_schedule"`
}

type AuthConfig struct {
	SecretKey       string        `koanf:"secret_key" validate:"required,min=16"`
	Issuer          string        `koanf:"issuer"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl" validate:"gt=0"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// Default значения по умолчанию до чтения окружения
func Default() *Config {
	return &Config{
		Primary: Primary{
			Env:      "development",
			TimeZone: "Asia/Seoul",
		},
		Server: ServerConfig{
			Address:            "0.0.0.0:8080",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			AuthRateLimit:      5,
			AuthRateBurst:      10,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			MigrateOnStart:  true,
		},
		Mongo: MongoConfig{
			Enabled:            true,
			URI:                "mongodb://localhost:9000",
			Database:           "fablink",
			DesignerCollection: "designer_orders",
			FactoryCollection:  "factory_orders",
			Timeout:            5 * time.Second,
			SyncSchedule:       "@every 10m",
		},
		Auth: AuthConfig{
			Issuer:          "fablink",
			AccessTokenTTL:  24 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load читает окружение поверх значений по умолчанию и проверяет результат
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)

	// переменные из старого деплоя
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("POSTGRES_CONN")
	}
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" && !k.Exists("server.address") {
		cfg.Server.Address = addr
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// splitList раскрывает значения вида "a,b" из одной переменной окружения
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsProduction влияет на формат логов
func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}

// Location часовой пояс для дат «сегодня» и отметок времени зеркала
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Primary.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
