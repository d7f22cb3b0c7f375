// Package config loads client and development server configuration
// from flags, environment and an optional config file using Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Префиксы переменных окружения
const (
	ClientEnvPrefix = "ATMTRACK"
	ServerEnvPrefix = "ATMTRACK_SERVER"
)

// Client holds CLI client configuration.
type Client struct {
	// Server is the API base URL, e.g. http://localhost:8080/api.
	Server string `mapstructure:"server"`
	// DB is the path to the local BoltDB file with the session.
	DB string `mapstructure:"db"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// RequestTimeout limits a single HTTP round trip.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RefreshLeadTime is how long before expiry the access token is refreshed.
	RefreshLeadTime time.Duration `mapstructure:"refresh_lead_time"`
}

// Server holds development backend configuration.
type Server struct {
	Addr       string        `mapstructure:"addr"`
	DB         string        `mapstructure:"db"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	LogLevel   string        `mapstructure:"log_level"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	// Seed creates demo users and devices on an empty database.
	Seed bool `mapstructure:"seed"`
}

// NewClientViper returns a Viper instance with client defaults and env binding.
func NewClientViper() *viper.Viper {
	v := newViper(ClientEnvPrefix)
	v.SetDefault("server", "http://localhost:8080/api")
	v.SetDefault("db", "atmtrack-client.db")
	v.SetDefault("log_level", "warn")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("refresh_lead_time", "5m")
	return v
}

// NewServerViper returns a Viper instance with server defaults and env binding.
func NewServerViper() *viper.Viper {
	v := newViper(ServerEnvPrefix)
	v.SetDefault("addr", ":8080")
	v.SetDefault("db", "atmtrack-server.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("access_ttl", "15m")
	v.SetDefault("refresh_ttl", "168h") // 7d
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("seed", false)
	return v
}

func newViper(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags связывает флаги с ключами конфигурации (имя флага с "-" вместо "_")
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("config: bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// readFile читает файл конфигурации, если он задан
func readFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// LoadClient builds and validates client Config. configFile is optional.
func LoadClient(v *viper.Viper, configFile string) (*Client, error) {
	if err := readFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Server == "" {
		return nil, errors.New("config: server must be set")
	}
	u, err := url.Parse(cfg.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("config: server must be an http(s) URL, got %q", cfg.Server)
	}
	if cfg.DB == "" {
		return nil, errors.New("config: db must be set")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("config: request_timeout must be positive")
	}
	if cfg.RefreshLeadTime < 0 {
		return nil, errors.New("config: refresh_lead_time must not be negative")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadServer builds and validates server Config. configFile is optional.
func LoadServer(v *viper.Viper, configFile string) (*Server, error) {
	if err := readFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: addr must be set")
	}
	if cfg.DB == "" {
		return nil, errors.New("config: db must be set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("config: jwt_secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("config: access_ttl and refresh_ttl must be positive")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: bcrypt_cost must be between 4 and 31")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseLevel переводит строку уровня логирования в slog.Level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log_level %q", level)
	}
	return l, nil
}
