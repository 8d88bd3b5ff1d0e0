package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const DefaultPath = "configs/config.toml"

type Config struct {
	Server struct {
		Host                 string        `toml:"host" env:"EMS_SERVER_HOST"`
		StrReadTimeout       string        `toml:"read_timeout"`
		StrWriteTimeout      string        `toml:"write_timeout"`
		StrReadHeaderTimeout string        `toml:"read_header_timeout"`
		ReadTimeout          time.Duration `toml:"-"`
		WriteTimeout         time.Duration `toml:"-"`
		ReadHeaderTimeout    time.Duration `toml:"-"`
	}
	Database struct {
		Host     string `toml:"host" env:"EMS_DATABASE_HOST"`
		User     string `toml:"user" env:"EMS_DATABASE_USER"`
		Password string `toml:"password" env:"EMS_DATABASE_PASSWORD"`
		Database string `toml:"database" env:"EMS_DATABASE_NAME"`
		MaxConns int32  `toml:"max_conns"`
	}
	Redis struct {
		RedisAddr     string `toml:"redis_addr" env:"EMS_REDIS_ADDR"`
		RedisPassword string `toml:"redis_password" env:"EMS_REDIS_PASSWORD"`
		RedisDB       int    `toml:"redis_db"`
	}
	Verification struct {
		StrCodeTTL        string        `toml:"code_ttl"`
		StrWindow         string        `toml:"window"`
		MaxCodesPerWindow int64         `toml:"max_codes_per_window"`
		CodeTTL           time.Duration `toml:"-"`
		Window            time.Duration `toml:"-"`
	}
	Mail struct {
		Host      string `toml:"host" env:"EMS_MAIL_HOST"`
		Port      int    `toml:"port"`
		Username  string `toml:"username" env:"EMS_MAIL_USERNAME"`
		Password  string `toml:"password" env:"EMS_MAIL_PASSWORD"`
		From      string `toml:"from"`
		Workers   int    `toml:"workers"`
		QueueSize int    `toml:"queue_size"`
	}
	Security struct {
		BcryptCost int `toml:"bcrypt_cost"`
	}
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	}
}

// GetConfig reads the TOML file at path, applies .env and environment
// overrides, fills defaults and validates the result.
func GetConfig(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error read config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	var cfg Config
	if _, tomlErr := toml.Decode(string(data), &cfg); tomlErr != nil {
		logger.Error("Error decode config file", slog.String("error", tomlErr.Error()))
		return nil, tomlErr
	}

	if envErr := godotenv.Load(); envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("Error load .env file", slog.String("error", envErr.Error()))
	}

	if err = env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parse server env: %w", err)
	}
	if err = env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parse database env: %w", err)
	}
	if err = env.Parse(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("parse redis env: %w", err)
	}
	if err = env.Parse(&cfg.Mail); err != nil {
		return nil, fmt.Errorf("parse mail env: %w", err)
	}

	if err = cfg.parseDurations(); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info("Config is loaded")
	return &cfg, nil
}

func parseDuration(raw string, fallback time.Duration, name string) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}

	return d, nil
}

func (c *Config) parseDurations() error {
	var err error

	if c.Server.ReadTimeout, err = parseDuration(c.Server.StrReadTimeout, 10*time.Second, "read_timeout"); err != nil {
		return err
	}
	if c.Server.WriteTimeout, err = parseDuration(c.Server.StrWriteTimeout, 10*time.Second, "write_timeout"); err != nil {
		return err
	}
	if c.Server.ReadHeaderTimeout, err = parseDuration(c.Server.StrReadHeaderTimeout, 5*time.Second, "read_header_timeout"); err != nil {
		return err
	}
	if c.Verification.CodeTTL, err = parseDuration(c.Verification.StrCodeTTL, 10*time.Minute, "code_ttl"); err != nil {
		return err
	}
	if c.Verification.Window, err = parseDuration(c.Verification.StrWindow, time.Hour, "window"); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = ":8080"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Verification.MaxCodesPerWindow == 0 {
		c.Verification.MaxCodesPerWindow = 5
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Mail.Workers == 0 {
		c.Mail.Workers = 2
	}
	if c.Mail.QueueSize == 0 {
		c.Mail.QueueSize = 100
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 10
	}
	if c.Log.File == "" {
		c.Log.File = "server.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.Database == "" {
		return errors.New("database host and name are required")
	}
	if c.Mail.From == "" {
		return errors.New("mail from address is required")
	}
	if c.Verification.CodeTTL <= 0 {
		return errors.New("code_ttl must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.Security.BcryptCost)
	}

	return nil
}

// LogLevel maps the configured level name to a slog level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}
