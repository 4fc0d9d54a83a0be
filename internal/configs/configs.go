package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	AppHost                string        `yaml:"app_host" env:"APP_HOST" env-default:"127.0.0.1"`
	AppPort                string        `yaml:"app_port" env:"APP_PORT" env-default:"8080"`
	DatabaseDriver         string        `yaml:"database_driver" env:"DATABASE_DRIVER" env-default:"sqlite"`
	DatabaseDSN            string        `yaml:"database_dsn" env:"DATABASE_DSN" env-default:"tasks.db"`
	JWTSecret              string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTTTL                 time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"24h"`
	BcryptCost             int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	RateLimit              int           `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	RedisHost              string        `yaml:"redis_host" env:"REDIS_HOST"`
	RedisPort              string        `yaml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	RedisDenylistPrefix    string        `yaml:"redis_denylist_prefix" env:"REDIS_DENYLIST_PREFIX" env-default:"revoked_token:"`
	ShutdownTimeoutSeconds int           `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"20"`
	LogLevel               string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat              string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	LogFile                string        `yaml:"log_file" env:"LOG_FILE"`
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// RedisAddr is empty when no redis host is configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Load reads configPath when it exists and the environment otherwise.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", configPath, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.AppHost == "" || cfg.AppPort == "" {
		return errors.New("APP_HOST and APP_PORT must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be greater than 0")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}
