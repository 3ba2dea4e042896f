package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // chatroom-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Storage struct {
	Backend string `yaml:"backend"` // memory|postgres
	DSN     string `yaml:"dsn"`     // обязателен для postgres
}

type Redis struct {
	URL              string `yaml:"url"`              // пусто — инмемори-кеш
	AnalysisCacheTTL string `yaml:"analysisCacheTTL"` // duration, напр. "24h"
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Storage Storage `yaml:"storage"`
	Redis   Redis   `yaml:"redis"`
}

func LoadConfig() (*Config, error) {
	// .env для локальной разработки; в проде файла просто нет
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv: переменные окружения перекрывают yaml.
func (c *Config) applyEnv() {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.Backend = "postgres"
		c.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.Backend != "memory" && c.Storage.Backend != "postgres" {
		return errors.New("storage.backend must be memory or postgres")
	}
	if c.Storage.Backend == "postgres" && c.Storage.DSN == "" {
		return errors.New("storage.dsn is required for postgres backend")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "chatroom-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

// AnalysisCacheTTL парсит TTL кеша анализа; дефолт — сутки.
func (c *Config) AnalysisCacheTTL() time.Duration {
	return parseDurationOr(24*time.Hour, c.Redis.AnalysisCacheTTL)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
