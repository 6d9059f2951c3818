// Package config loads the settings of the seqbatch command from an optional
// config file and SEQBATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MasterOfBinary/seqbatch/logging"
)

// EnvPrefix is prepended to every environment variable. Nested keys use a
// double underscore, for example SEQBATCH_LOG__LEVEL.
const EnvPrefix = "SEQBATCH"

// AppConfig is the application configuration.
type AppConfig struct {
	Input     string `mapstructure:"input" validate:"required"`
	Extractor string `mapstructure:"extractor" validate:"required,oneof=file sqlite"`
	Codec     string `mapstructure:"codec" validate:"required,oneof=msgp json"`
	Schema    string `mapstructure:"schema" validate:"required,oneof=default sequence"`

	BatchSize              int   `mapstructure:"batch_size" validate:"required,gt=0"`
	Epochs                 int   `mapstructure:"epochs" validate:"gte=0"`
	QueueCapacity          int   `mapstructure:"queue_capacity" validate:"gte=0"`
	MaxSequenceLength      int   `mapstructure:"max_sequence_length" validate:"gte=0"`
	AllowSmallerFinalBatch bool  `mapstructure:"allow_smaller_final_batch"`
	PadValue               int64 `mapstructure:"pad_value"`

	// Timeout bounds a whole run. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// MetricsAddr is the listen address of the Prometheus endpoint. Empty
	// disables it.
	MetricsAddr string `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`

	Log logging.Config `mapstructure:"log"`
}

// InitConfig creates a viper instance with defaults, reading path if it is
// not empty. Without a path, ./seqbatch.{yaml,json,toml,env} is read when
// present.
func InitConfig(path string) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	setDefault(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("seqbatch")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("extractor", "file")
	v.SetDefault("codec", "msgp")
	v.SetDefault("schema", "default")
	v.SetDefault("batch_size", 32)
	v.SetDefault("epochs", 1)
	v.SetDefault("queue_capacity", 0)
	v.SetDefault("max_sequence_length", 0)
	v.SetDefault("allow_smaller_final_batch", false)
	v.SetDefault("pad_value", 0)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("timeout", "0s")

	v.SetDefault("log__level", "info")
	v.SetDefault("log__file", "")
	v.SetDefault("log__max_size_mb", 100)
	v.SetDefault("log__max_backups", 3)
	v.SetDefault("log__max_age_days", 28)
	v.SetDefault("log__json", false)
}

// BindFlags makes the flags in fs override the config keys of the same name.
// Dashes in flag names stand for underscores and dots for nesting, so
// --log.max-backups sets log__max_backups.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	replacer := strings.NewReplacer("-", "_", ".", "__")

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := replacer.Replace(f.Name)
		err = v.BindPFlag(key, f)
	})
	return err
}

// GetApplicationConfig unmarshals and validates the configuration.
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	hook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&config, hook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &config, nil
}
