package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override (SPECTRUM_STORE_DRIVER, ...).
const EnvPrefix = "SPECTRUM"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Preset sources.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
	SourceLoam    = "loam"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrUnknownSource = errors.New("unknown preset source")
	ErrInvalidKey    = errors.New("encryption key must be 32 bytes, base64 encoded")
	ErrInvalidRedact = errors.New("invalid redact key pattern")
)

// Config is the resolved application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Language  string `mapstructure:"language"`
	Theme     string `mapstructure:"theme"`

	Store    StoreConfig    `mapstructure:"store"`
	Presets  PresetConfig   `mapstructure:"presets"`
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
}

type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	Lock          bool          `mapstructure:"lock"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

type PresetConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Watch  bool   `mapstructure:"watch"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SecurityConfig struct {
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	RedactKeys    []string `mapstructure:"redact_keys"`
}

// Options control where configuration is read from.
type Options struct {
	// ConfigFile is an explicit config path. When empty, spectrum.yaml is
	// searched in the working directory and is optional.
	ConfigFile string
	// EnvFile is a dotenv file loaded before env lookup. Missing files are ignored.
	EnvFile string
	// Flags are bound over every other source.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"log-format": "log_format",
	"lang":       "language",
	"theme":      "theme",
	"store":      "store.driver",
	"store-path": "store.path",
	"presets":    "presets.path",
	"addr":       "server.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("language", "en")
	v.SetDefault("theme", "light")

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", ".spectrum/sessions")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.prefix", "spectrum:session:")
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("store.lock", false)
	v.SetDefault("store.lock_ttl", 30*time.Second)

	v.SetDefault("presets.source", SourceBuiltin)
	v.SetDefault("presets.path", "")
	v.SetDefault("presets.watch", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("security.encryption_key", "")
	v.SetDefault("security.fallback_keys", []string{})
	v.SetDefault("security.redact_keys", []string{})
}

// Load resolves configuration from defaults, the config file, the dotenv
// file, SPECTRUM_* variables and flags, in increasing precedence.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("spectrum")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and key material.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	switch c.Presets.Source {
	case SourceBuiltin:
	case SourceFile, SourceLoam:
		if c.Presets.Path == "" {
			return fmt.Errorf("presets source %q requires presets.path", c.Presets.Source)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Presets.Source)
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	for _, p := range c.Security.RedactKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidRedact, p, err)
		}
	}
	return nil
}

// EncryptionKeys decodes the active and fallback keys. A nil active key means
// encryption is disabled.
func (c *Config) EncryptionKeys() (active []byte, fallbacks [][]byte, err error) {
	if c.Security.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.Security.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	for _, raw := range c.Security.FallbackKeys {
		k, err := decodeKey(raw)
		if err != nil {
			return nil, nil, err
		}
		fallbacks = append(fallbacks, k)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil || len(k) != 32 {
		return nil, ErrInvalidKey
	}
	return k, nil
}
