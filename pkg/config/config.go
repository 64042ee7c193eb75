package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Admin     AdminConfig     `mapstructure:"admin"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	BodyLimit   int    `mapstructure:"body_limit"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// RateLimitConfig drives the admission ledger. Every threshold is tunable;
// the defaults match the documented limits.
type RateLimitConfig struct {
	WindowSeconds        int    `mapstructure:"window_seconds"`
	SoftThreshold        int    `mapstructure:"soft_threshold"`
	AbuseThreshold       int    `mapstructure:"abuse_threshold"`
	BlacklistSeconds     int    `mapstructure:"blacklist_seconds"`
	TrustedProxyHeader   string `mapstructure:"trusted_proxy_header"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"`
	SweepIdleFactor      int    `mapstructure:"sweep_idle_factor"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c RateLimitConfig) BlacklistDuration() time.Duration {
	return time.Duration(c.BlacklistSeconds) * time.Second
}

func (c RateLimitConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

type AdminConfig struct {
	// Token comes from the ADMIN_TOKEN environment variable. When empty,
	// every admin route answers 503.
	Token string `mapstructure:"token"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	AllowMethods []string `mapstructure:"allow_methods"`
	MaxAge       string   `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	// Defaults apply with or without a config file: a missing file only
	// means every value falls back.
	err := loadConfigFile(configPath, "config", &globalConfig)
	setDefaultValues()
	if err != nil {
		return fmt.Errorf("⚠️ Warning: Could not load main config file: %v", err)
	}
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Server.BodyLimit == 0 {
		globalConfig.Server.BodyLimit = 8 * 1024 * 1024
	}
	if globalConfig.Redis.Port == 0 {
		globalConfig.Redis.Port = 6379
	}
	if globalConfig.RateLimit.WindowSeconds == 0 {
		globalConfig.RateLimit.WindowSeconds = 60
	}
	if globalConfig.RateLimit.SoftThreshold == 0 {
		globalConfig.RateLimit.SoftThreshold = 30
	}
	if globalConfig.RateLimit.AbuseThreshold == 0 {
		globalConfig.RateLimit.AbuseThreshold = 100
	}
	if globalConfig.RateLimit.BlacklistSeconds == 0 {
		globalConfig.RateLimit.BlacklistSeconds = 3600
	}
	if globalConfig.RateLimit.TrustedProxyHeader == "" {
		globalConfig.RateLimit.TrustedProxyHeader = "CF-Connecting-IP"
	}
	if globalConfig.RateLimit.SweepIntervalSeconds == 0 {
		globalConfig.RateLimit.SweepIntervalSeconds = 300
	}
	if globalConfig.RateLimit.SweepIdleFactor == 0 {
		globalConfig.RateLimit.SweepIdleFactor = 5
	}
	if globalConfig.Admin.Token == "" {
		globalConfig.Admin.Token = os.Getenv("ADMIN_TOKEN")
	}
	if len(globalConfig.CORS.AllowOrigins) == 0 {
		globalConfig.CORS.AllowOrigins = []string{"*"}
	}
	if len(globalConfig.CORS.AllowMethods) == 0 {
		globalConfig.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	// Metrics are on unless explicitly switched off; a bool zero value
	// cannot distinguish "unset" from "disabled".
	if !viper.IsSet("metrics.enabled") {
		globalConfig.Metrics.Enabled = true
	}
}

func GetConfig() *Config {
	return &globalConfig
}
