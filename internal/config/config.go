package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ICSSYNC"
	Name      = "icssync"
)

type Config struct {
	FeedURL      string        `mapstructure:"feed_url"`
	CalendarID   string        `mapstructure:"calendar_id"`
	Account      string        `mapstructure:"account"`
	Database     string        `mapstructure:"database"`
	Credentials  string        `mapstructure:"credentials"`
	FutureOnly   bool          `mapstructure:"future_only"`
	PruneMissing bool          `mapstructure:"prune_missing"`
	DryRun       bool          `mapstructure:"dry_run"`
	Recurrence   bool          `mapstructure:"recurrence"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	Verbose      bool          `mapstructure:"verbose"`
	Every        string        `mapstructure:"every"`
}

var defaults = map[string]any{
	"feed_url":      "",
	"calendar_id":   "primary",
	"account":       "",
	"database":      "icssync.db",
	"credentials":   "credentials.json",
	"future_only":   false,
	"prune_missing": false,
	"dry_run":       false,
	"recurrence":    true,
	"http_timeout":  30 * time.Second,
	"verbose":       false,
	"every":         "",
}

// New returns a viper instance reading ICSSYNC_* variables, with every key
// defaulted so environment variables are seen by Unmarshal.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag of fs whose name, with dashes as underscores,
// is a config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := defaults[key]; !ok {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = errors.Join(err, bindErr)
		}
	})
	return err
}

// Load reads envFile and the config file into v. Missing files are not an
// error unless configFile was given explicitly. Variables already in the
// environment win over the ones in envFile.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.FeedURL == "" {
		return errors.New("feed_url is required (--feed-url or ICSSYNC_FEED_URL)")
	}
	return nil
}
