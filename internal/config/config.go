// Package config содержит логику чтения конфигурации сервиса дашборда.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса дашборда.
type Config struct {
	RunAddress            string        `env:"RUN_ADDRESS"`
	DatabaseURI           string        `env:"DATABASE_URI"`
	ProfileServiceAddress string        `env:"PROFILE_SERVICE_ADDRESS"`
	AuthSecret            string        `env:"AUTH_SECRET"`
	FetchTimeout          time.Duration `env:"FETCH_TIMEOUT"`
	RenewalCheckInterval  time.Duration `env:"RENEWAL_CHECK_INTERVAL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envProfileAddress := cfg.ProfileServiceAddress
	envAuthSecret := cfg.AuthSecret
	envFetchTimeout := cfg.FetchTimeout
	envRenewalInterval := cfg.RenewalCheckInterval

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.ProfileServiceAddress, "r", "", "profile service address")
	flag.StringVar(&cfg.AuthSecret, "s", "", "session cookie signing secret")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 3*time.Second, "per-channel dashboard fetch timeout")
	flag.DurationVar(&cfg.RenewalCheckInterval, "renewal-interval", time.Hour, "interval between renewal alert scans")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envProfileAddress != "" {
		cfg.ProfileServiceAddress = envProfileAddress
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envFetchTimeout != 0 {
		cfg.FetchTimeout = envFetchTimeout
	}
	if envRenewalInterval != 0 {
		cfg.RenewalCheckInterval = envRenewalInterval
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}

	return cfg, nil
}
