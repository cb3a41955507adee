// Package config loads the settings shared by every command from a config file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gostonefire/tripindex/diskhash"
	"github.com/gostonefire/tripindex/reader"
)

// EnvPrefix - Prefix of environment variables, "index.dir" is read from TRIPINDEX_INDEX_DIR
const EnvPrefix = "TRIPINDEX"

// Config aggregates configuration for the application.
type Config struct {
	Index  IndexConfig  `mapstructure:"index"`
	Reader ReaderConfig `mapstructure:"reader"`
	Log    LogConfig    `mapstructure:"log"`
}

// IndexConfig holds the disk hash table settings.
type IndexConfig struct {
	Dir        string        `mapstructure:"dir"`
	Buckets    int64         `mapstructure:"buckets"`
	Hash       string        `mapstructure:"hash"`
	Codec      string        `mapstructure:"codec"`
	Compress   bool          `mapstructure:"compress"`
	CacheSize  uint64        `mapstructure:"cache_size"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	BuildBatch int           `mapstructure:"build_batch"`
}

// ReaderConfig holds the streaming reader settings.
type ReaderConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("index.dir", "./index")
	// Zero values let a new table take the built-in layout and an existing one its recorded layout
	v.SetDefault("index.buckets", 0)
	v.SetDefault("index.hash", "")
	v.SetDefault("index.codec", "")
	v.SetDefault("index.compress", false)
	v.SetDefault("index.cache_size", 0)
	v.SetDefault("index.cache_ttl", time.Minute)
	v.SetDefault("index.build_batch", 0)
	v.SetDefault("reader.buffer_size", reader.DefaultBufferSize)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// Load reads configuration from a file and environment variables.
// When configFile is empty an optional "config.yaml" (or any format viper knows) in the working
// directory is used. Environment variables use the prefix "TRIPINDEX" and the dot in keys is
// replaced by an underscore.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// TableConf returns the disk hash table configuration for dir, or for Index.Dir when dir is empty.
func (c *Config) TableConf(dir string, logger *slog.Logger) diskhash.Conf {
	if dir == "" {
		dir = c.Index.Dir
	}
	return diskhash.Conf{
		Dir:             dir,
		NumberOfBuckets: c.Index.Buckets,
		Hash:            c.Index.Hash,
		Codec:           c.Index.Codec,
		Compress:        c.Index.Compress,
		CacheSize:       c.Index.CacheSize,
		CacheTTL:        c.Index.CacheTTL,
		BuildBatch:      c.Index.BuildBatch,
		Logger:          logger,
	}
}

// ReaderOptions returns the streaming reader options.
func (c *Config) ReaderOptions(logger *slog.Logger) []reader.Option {
	return []reader.Option{
		reader.WithBufferSize(c.Reader.BufferSize),
		reader.WithLogger(logger),
	}
}
