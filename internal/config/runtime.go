package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RuntimeConfig carries operational tunables that may change without a
// redeploy: credential lifetimes and the SDK key prefix.
type RuntimeConfig struct {
	TokenTTLMinutes int    `mapstructure:"tokenTtlMinutes"`
	APIKeyPrefix    string `mapstructure:"apiKeyPrefix"`
	APIKeyBytes     int    `mapstructure:"apiKeyBytes"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		TokenTTLMinutes: 60,
		APIKeyPrefix:    "sk-sdk-",
		APIKeyBytes:     32,
	}
}

type RuntimeConfigHolder struct {
	current atomic.Value // holds RuntimeConfig
}

func NewRuntimeConfigHolder() (*RuntimeConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("runtime")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/entitle/config") // Volume-mounted config
	v.AddConfigPath("/etc/entitle")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("ENTITLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRuntimeConfig()
	v.SetDefault("auth.tokenTtlMinutes", defaults.TokenTTLMinutes)
	v.SetDefault("auth.apiKeyPrefix", defaults.APIKeyPrefix)
	v.SetDefault("auth.apiKeyBytes", defaults.APIKeyBytes)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg RuntimeConfig
	if err := v.UnmarshalKey("auth", &cfg); err != nil {
		return nil, err
	}
	if err := validateRuntimeConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RuntimeConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RuntimeConfig
		if err := v.UnmarshalKey("auth", &updated); err != nil {
			log.Printf("[runtime-config] reload failed: %v", err)
			return
		}
		if err := validateRuntimeConfig(updated); err != nil {
			log.Printf("[runtime-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[runtime-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticRuntimeConfigHolder wraps a fixed config with no file watching.
func NewStaticRuntimeConfigHolder(cfg RuntimeConfig) *RuntimeConfigHolder {
	holder := &RuntimeConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RuntimeConfigHolder) Get() RuntimeConfig {
	return h.current.Load().(RuntimeConfig)
}

func validateRuntimeConfig(cfg RuntimeConfig) error {
	if cfg.TokenTTLMinutes <= 0 {
		return errors.New("auth.tokenTtlMinutes must be positive")
	}
	if strings.TrimSpace(cfg.APIKeyPrefix) == "" {
		return errors.New("auth.apiKeyPrefix cannot be empty")
	}
	if cfg.APIKeyBytes < 16 {
		return errors.New("auth.apiKeyBytes must be at least 16")
	}
	return nil
}
