package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage      string        `yaml:"storage" env:"STORAGE" env-default:"memory"`
	SessionTTL   time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
	Redis        Redis         `yaml:"redis"`
	NATS         NATS          `yaml:"nats"`
	Notification Notification  `yaml:"notification"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// NATS - event bus settings, an empty URL disables publishing.
type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL" env-default:""`
	SubjectPrefix string `yaml:"subject-prefix" env:"NATS_SUBJECT_PREFIX" env-default:"tictactoe.history"`
}

type Notification struct {
	Display time.Duration `yaml:"display" env:"NOTIFICATION_DISPLAY" env-default:"3.5s"`
}

// Load - reads the config file at path with env overrides. A missing file falls back to env and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read env: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) validate() error {
	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	if that.SessionTTL < 0 {
		return fmt.Errorf("session-ttl must not be negative: %s", that.SessionTTL)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
