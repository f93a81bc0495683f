package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type config struct {
	Host          string        `mapstructure:"HOST"`
	Port          int           `mapstructure:"PORT"`
	ApiKey        string        `mapstructure:"GIPHY_API_KEY"`
	Endpoint      string        `mapstructure:"GIPHY_ENDPOINT"`
	Limit         int           `mapstructure:"LIMIT"`
	HttpTimeout   time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RateLimit     float64       `mapstructure:"RATE_LIMIT"`
	RateBurst     int           `mapstructure:"RATE_BURST"`
	DownloadHosts []string      `mapstructure:"DOWNLOAD_HOSTS"`
	LogFile       string        `mapstructure:"LOG_FILE"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	DbUser        string        `mapstructure:"DB_USER"`
	DbPass        string        `mapstructure:"DB_PASS"`
	DbHost        string        `mapstructure:"DB_HOST"`
	DbPort        int           `mapstructure:"DB_PORT"`
	DbName        string        `mapstructure:"DB_NAME"`
	DbEnabled     bool          `mapstructure:"DB_ENABLED"`
}

var defaults = map[string]any{
	"HOST":           "",
	"PORT":           8080,
	"GIPHY_API_KEY":  "",
	"GIPHY_ENDPOINT": "https://api.giphy.com/v1/gifs/search",
	"LIMIT":          12,
	"HTTP_TIMEOUT":   10 * time.Second,
	"RATE_LIMIT":     1.0,
	"RATE_BURST":     3,
	"DOWNLOAD_HOSTS": []string{"giphy.com"},
	"LOG_FILE":       "app.log",
	"LOG_LEVEL":      "info",
	"DB_USER":        "",
	"DB_PASS":        "",
	"DB_HOST":        "localhost",
	"DB_PORT":        3306,
	"DB_NAME":        "gifgrid",
	"DB_ENABLED":     false,
}

// loadConfig reads envFile when it exists, environment variables take
// precedence over it.
func loadConfig(envFile string) (config, error) {
	var c config

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return c, errors.Wrapf(err, "error while reading config file %s", envFile)
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "unable to unmarshal config")
	}
	return c, nil
}
