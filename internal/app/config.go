package app

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ytfinder/internal/domain"
	"ytfinder/internal/infra/swr"
)

// Config is the effective service configuration, loaded from an optional
// YAML file with YTFINDER_* environment overrides.
type Config struct {
	Upstream      UpstreamConfig      `mapstructure:"upstream" yaml:"upstream"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

type UpstreamConfig struct {
	// BaseURL is the only required setting; startup fails without it.
	BaseURL    string `mapstructure:"baseURL" yaml:"baseURL"`
	VideosPath string `mapstructure:"videosPath" yaml:"videosPath"`
	UserAgent  string `mapstructure:"userAgent" yaml:"userAgent"`
}

type CacheConfig struct {
	SoftTTLSeconds           int `mapstructure:"softTTLSeconds" yaml:"softTTLSeconds"`
	HardTTLSeconds           int `mapstructure:"hardTTLSeconds" yaml:"hardTTLSeconds"`
	ForegroundTimeoutSeconds int `mapstructure:"foregroundTimeoutSeconds" yaml:"foregroundTimeoutSeconds"`
	BackgroundTimeoutSeconds int `mapstructure:"backgroundTimeoutSeconds" yaml:"backgroundTimeoutSeconds"`
}

type ServerConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	HTTPAddr  string `mapstructure:"httpAddr" yaml:"httpAddr"`
	HTTPPath  string `mapstructure:"httpPath" yaml:"httpPath"`
}

type ObservabilityConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddress string `mapstructure:"listenAddress" yaml:"listenAddress"`
	DebugToken    string `mapstructure:"debugToken" yaml:"debugToken,omitempty"`
}

// Policy converts the cache settings into an engine policy.
func (c CacheConfig) Policy() swr.Policy {
	return swr.Policy{
		SoftTTL:           time.Duration(c.SoftTTLSeconds) * time.Second,
		HardTTL:           time.Duration(c.HardTTLSeconds) * time.Second,
		ForegroundTimeout: time.Duration(c.ForegroundTimeoutSeconds) * time.Second,
		BackgroundTimeout: time.Duration(c.BackgroundTimeoutSeconds) * time.Second,
	}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setConfigDefaults(v)
	v.SetEnvPrefix("YTFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("upstream.baseURL", "")
	v.SetDefault("upstream.videosPath", domain.DefaultVideosPath)
	v.SetDefault("upstream.userAgent", domain.DefaultUserAgent)
	v.SetDefault("cache.softTTLSeconds", domain.DefaultSoftTTLSeconds)
	v.SetDefault("cache.hardTTLSeconds", domain.DefaultHardTTLSeconds)
	v.SetDefault("cache.foregroundTimeoutSeconds", domain.DefaultForegroundTimeoutSeconds)
	v.SetDefault("cache.backgroundTimeoutSeconds", domain.DefaultBackgroundTimeoutSeconds)
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.httpAddr", domain.DefaultHTTPAddr)
	v.SetDefault("server.httpPath", domain.DefaultHTTPPath)
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.debugToken", "")
}

// LoadConfig reads the configuration, optionally from a file. A missing
// upstream base URL is a fatal config error: the process refuses to start
// rather than serve guaranteed-empty payloads forever.
func LoadConfig(path string) (*Config, *viper.Viper, error) {
	v := newConfigViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, domain.E(domain.CodeConfig, "app.LoadConfig", "read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, domain.E(domain.CodeConfig, "app.LoadConfig", "decode config", err)
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		return nil, nil, domain.E(domain.CodeConfig, "app.LoadConfig",
			"upstream.baseURL is required (set YTFINDER_UPSTREAM_BASEURL or the config file)", nil)
	}
	return &cfg, v, nil
}

// WatchCachePolicy hot-reloads the cache tunables when the config file
// changes. Only the cache section is applied live; transport and upstream
// changes need a restart.
func WatchCachePolicy(v *viper.Viper, engine *swr.Engine, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v.OnConfigChange(func(event fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			logger.Warn("config reload failed, keeping previous policy",
				zap.String("file", event.Name),
				zap.Error(err),
			)
			return
		}
		engine.SetPolicy(cfg.Cache.Policy())
		logger.Info("cache policy reloaded",
			zap.String("file", event.Name),
			zap.Int("softTTLSeconds", cfg.Cache.SoftTTLSeconds),
			zap.Int("hardTTLSeconds", cfg.Cache.HardTTLSeconds),
		)
	})
	v.WatchConfig()
}
