package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Registry struct {
	v *viper.Viper
}

func NewRegistry() *Registry {
	return &Registry{
		v: viper.New(),
	}
}

func (r *Registry) LoadConfig(cfgFile string) (*Config, error) {
	r.setDefaults()

	if cfgFile != "" {
		r.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %v", err)
		}

		configDir := filepath.Join(home, ".trackwire")

		r.v.AddConfigPath(configDir)
		r.v.SetConfigName("config")
		r.v.SetConfigType("yaml")
	}

	if err := r.v.ReadInConfig(); err != nil {
		// Defaults cover everything; a missing file is only an error
		// when it was named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %v", err)
		}
	}

	r.v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Printf("config file changed: %s\n", e.Name)
	})
	r.v.WatchConfig()

	var cfg Config

	if err := r.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("error on validating config: %v", err)
	}

	return &cfg, nil
}

func (r *Registry) setDefaults() {
	r.v.SetDefault("port", 6881)
	r.v.SetDefault("numwant", 50)
	r.v.SetDefault("log.level", "info")
	r.v.SetDefault("log.format", "text")
	r.v.SetDefault("tracker.request_timeout", 15)
	r.v.SetDefault("tracker.max_retries", 3)
	r.v.SetDefault("tracker.min_interval", 60)
	r.v.SetDefault("tracker.max_response_length", 1<<20)
}

func (r *Registry) ConfigFile() string {
	return r.v.ConfigFileUsed()
}
