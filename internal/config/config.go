package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`

	MLSidecar struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"ml_sidecar"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`

	Engine struct {
		RunTimeout        time.Duration `mapstructure:"run_timeout"`
		MaxConcurrentRuns int           `mapstructure:"max_concurrent_runs"`
	} `mapstructure:"engine"`

	Cache struct {
		TTL  time.Duration `mapstructure:"ttl"`
		Size int           `mapstructure:"size"`
	} `mapstructure:"cache"`

	Auth struct {
		Issuer   string `mapstructure:"issuer"`
		ClientID string `mapstructure:"client_id"`
		Bypass   bool   `mapstructure:"bypass"`
	} `mapstructure:"auth"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Auth.Issuer = normalizeIssuer(config.Auth.Issuer)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "dev")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("ml_sidecar.url", "http://localhost:8500")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("engine.run_timeout", 10*time.Minute)
	viper.SetDefault("engine.max_concurrent_runs", 8)
	viper.SetDefault("cache.ttl", 5*time.Minute)
	viper.SetDefault("cache.size", 512)
}

// normalizeIssuer ensures the configured OIDC issuer string is in a
// predictable form. It removes any trailing slash and leaves the scheme
// and path intact, so the value can be pasted straight from the IdP's
// admin console.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	if strings.HasSuffix(iss, "/") {
		iss = strings.TrimRight(iss, "/")
	}
	return iss
}
