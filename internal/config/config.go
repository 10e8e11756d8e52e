// Package config loads dynapi command settings from dynapi.yaml, the
// environment and an optional .env file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	dynerrors "github.com/toyz/dynapi/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. DYNAPI_SERVER_ADDR
const EnvPrefix = "DYNAPI"

// Config holds the command settings
type Config struct {
	Manifest string         `mapstructure:"manifest" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// ServerConfig selects the web adapter and listen address
type ServerConfig struct {
	Adapter         string        `mapstructure:"adapter" validate:"oneof=echo gin fiber"`
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig configures internal/logging
type LogConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" validate:"oneof=console json"`
	File     string `mapstructure:"file"`
}

// PoolConfig tunes the type pool
type PoolConfig struct {
	TypeCacheSize int `mapstructure:"type_cache_size" validate:"min=1"`
}

// GenerateConfig holds defaults for the generate command
type GenerateConfig struct {
	Package string `mapstructure:"package"`
	Output  string `mapstructure:"output" validate:"required"`
}

// Load reads dir/.env into the process environment, then dir/dynapi.yaml.
// DYNAPI_* variables override file values.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, dynerrors.WrapConfigurationError(".env", err)
	}

	v := viper.New()
	v.SetDefault("manifest", "dynapi.manifest.yaml")
	v.SetDefault("server.adapter", "echo")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("pool.type_cache_size", 256)
	v.SetDefault("generate.package", "")
	v.SetDefault("generate.output", "generated")

	v.SetConfigName("dynapi")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, dynerrors.WrapConfigurationError("dynapi.yaml", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, dynerrors.WrapConfigurationError("dynapi.yaml", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, dynerrors.WrapConfigurationError("settings", err)
	}

	if !filepath.IsAbs(cfg.Manifest) {
		cfg.Manifest = filepath.Join(dir, cfg.Manifest)
	}
	return &cfg, nil
}
