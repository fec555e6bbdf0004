// Package config loads process configuration from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"roomchat/backend/internal/models"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Settings  SettingsConfig  `yaml:"settings"`
	Retention RetentionConfig `yaml:"retention"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
}

type StorageConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// SettingsConfig mirrors models.Settings with a human readable file size.
type SettingsConfig struct {
	MaxMessageLength    int    `yaml:"max_message_length"`
	MaxMessagesPerRoom  int    `yaml:"max_messages_per_room"`
	MessageLifetimeDays int    `yaml:"message_lifetime_days"`
	AllowMedia          *bool  `yaml:"allow_media"`
	MaxFileSize         string `yaml:"max_file_size"`
}

type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	allowMedia := true
	return &Config{
		Server: ServerConfig{Address: ":8080"},
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   "database/database.json",
			Redis:  RedisConfig{Addr: "localhost:6379", Key: "roomchat:document"},
		},
		Settings: SettingsConfig{
			MaxMessageLength:    DefaultMaxMessageLength,
			MaxMessagesPerRoom:  DefaultMaxMessagesPerRoom,
			MessageLifetimeDays: DefaultMessageLifetimeDays,
			AllowMedia:          &allowMedia,
			MaxFileSize:         humanize.IBytes(DefaultMaxFileSize),
		},
		Retention: RetentionConfig{Enabled: true, Cron: DefaultRetentionCron},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CHAT_CONFIG, then environment variables. A missing .env file is not an
// error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: no .env file loaded")
	}

	cfg := Default()
	if path := os.Getenv("CHAT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Address, "CHAT_ADDR")
	setString(&c.Storage.Driver, "CHAT_STORAGE")
	setString(&c.Storage.Path, "CHAT_DB_PATH")
	setString(&c.Storage.DSN, "DATABASE_DSN")
	setString(&c.Storage.Redis.Addr, "REDIS_ADDR")
	setString(&c.Storage.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.Redis.Key, "REDIS_KEY")
	setString(&c.Settings.MaxFileSize, "CHAT_MAX_FILE_SIZE")
	setString(&c.Retention.Cron, "CHAT_RETENTION_CRON")

	ints := []struct {
		dst *int
		key string
	}{
		{&c.Storage.Redis.DB, "REDIS_DB"},
		{&c.Settings.MaxMessageLength, "CHAT_MAX_MESSAGE_LENGTH"},
		{&c.Settings.MaxMessagesPerRoom, "CHAT_MAX_MESSAGES_PER_ROOM"},
		{&c.Settings.MessageLifetimeDays, "CHAT_MESSAGE_LIFETIME_DAYS"},
		{&c.RateLimit.Burst, "CHAT_RATE_LIMIT_BURST"},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}

	if v := os.Getenv("CHAT_ALLOW_MEDIA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHAT_ALLOW_MEDIA: %w", err)
		}
		c.Settings.AllowMedia = &b
	}
	if v := os.Getenv("CHAT_RETENTION_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHAT_RETENTION_ENABLED: %w", err)
		}
		c.Retention.Enabled = b
	}
	if v := os.Getenv("CHAT_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CHAT_RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}

	if c.Storage.DSN == "" && os.Getenv("DB_HOST") != "" {
		c.Storage.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	s := c.Settings
	if s.MaxMessageLength <= 0 {
		return fmt.Errorf("max_message_length must be positive, got %d", s.MaxMessageLength)
	}
	if s.MaxMessagesPerRoom <= 0 {
		return fmt.Errorf("max_messages_per_room must be positive, got %d", s.MaxMessagesPerRoom)
	}
	if s.MessageLifetimeDays <= 0 {
		return fmt.Errorf("message_lifetime_days must be positive, got %d", s.MessageLifetimeDays)
	}
	if _, err := c.maxFileSize(); err != nil {
		return err
	}

	if c.Retention.Enabled && !gronx.IsValid(c.Retention.Cron) {
		return fmt.Errorf("invalid retention cron %q", c.Retention.Cron)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	return nil
}

func (c *Config) maxFileSize() (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(c.Settings.MaxFileSize))
	if err != nil {
		return 0, fmt.Errorf("invalid max_file_size %q: %w", c.Settings.MaxFileSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("max_file_size must be positive")
	}
	return int64(n), nil
}

// ChatSettings converts the settings section into the store's settings.
// It assumes Validate has passed.
func (c *Config) ChatSettings() models.Settings {
	size, _ := c.maxFileSize()
	allowMedia := c.Settings.AllowMedia == nil || *c.Settings.AllowMedia
	return models.Settings{
		MaxMessageLength:    c.Settings.MaxMessageLength,
		MaxMessagesPerRoom:  c.Settings.MaxMessagesPerRoom,
		MessageLifetimeDays: c.Settings.MessageLifetimeDays,
		AllowMedia:          allowMedia,
		MaxFileSize:         size,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
