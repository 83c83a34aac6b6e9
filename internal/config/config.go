package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COACH_"

type Config struct {
	DBPath   string      `yaml:"db_path"`
	Timezone string      `yaml:"timezone"`
	Log      LogConfig   `yaml:"log"`
	Redis    RedisConfig `yaml:"redis"`
}

type LogConfig struct {
	Mode     string `yaml:"mode"`
	Level    string `yaml:"level"`
	HashSalt string `yaml:"hash_salt"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

func Default() Config {
	return Config{
		Log:   LogConfig{Mode: "dev", Level: "warn"},
		Redis: RedisConfig{Channel: "coach:changes"},
	}
}

// Load layers defaults, the YAML file, a .env file and COACH_* variables in that order.
// Missing files are not an error.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()
	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", yamlPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	if envPath != "" {
		values, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			if err := cfg.apply(func(k string) (string, bool) {
				v, ok := values[k]
				return v, ok
			}); err != nil {
				return Config{}, fmt.Errorf("apply %s: %w", envPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}
	if err := cfg.apply(os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DB_PATH":        &c.DBPath,
		"TIMEZONE":       &c.Timezone,
		"LOG_MODE":       &c.Log.Mode,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_HASH_SALT":  &c.Log.HashSalt,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"REDIS_CHANNEL":  &c.Redis.Channel,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREDIS_DB must be an integer", envPrefix)
		}
		c.Redis.DB = n
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis db must be >= 0")
	}
	if c.Redis.Addr != "" && strings.TrimSpace(c.Redis.Channel) == "" {
		return fmt.Errorf("redis channel is required when redis addr is set")
	}
	return nil
}

// Location resolves the timezone override; empty means the device zone.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
