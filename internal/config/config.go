// Package config loads the service configuration from a YAML file, applies
// defaults, validates it, and lets environment variables override the
// secrets and URLs that should not live in the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener tuning. There is no write timeout on
// purpose: the stream endpoint holds its connection open indefinitely.
type ServerConfig struct {
	Port              int `yaml:"port" validate:"gte=0,lte=65535"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec" validate:"gte=0"`
	IdleTimeoutSec    int `yaml:"idle_timeout_sec" validate:"gte=0"`
	ShutdownGraceSec  int `yaml:"shutdown_grace_sec" validate:"gte=0"`
	ReadHeaderTimeout int `yaml:"read_header_timeout_sec" validate:"gte=0"`
}

type RoutingConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	CacheTTLSec int    `yaml:"cache_ttl_sec" validate:"gte=0"`
}

type SessionConfig struct {
	RerouteThresholdMeters float64 `yaml:"reroute_threshold_meters" validate:"gte=0"`
	ProgressIntervalSec    int     `yaml:"progress_interval_sec" validate:"gte=0"`
	DebounceMS             int     `yaml:"debounce_ms" validate:"gte=0"`
	FixTimeoutSec          int     `yaml:"fix_timeout_sec" validate:"gte=0"`
	ViewZoom               int     `yaml:"view_zoom" validate:"gte=0,lte=22"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Routing RoutingConfig `yaml:"routing"`
	Session SessionConfig `yaml:"session"`

	// Optional backing services; empty disables the feature.
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	// MQTT fix intake. Sessions created with source=mqtt subscribe to
	// <topic_prefix><session_id>.
	MQTTURL         string `yaml:"mqtt_url"`
	MQTTTopicPrefix string `yaml:"mqtt_topic_prefix"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			ReadTimeoutSec:    10,
			IdleTimeoutSec:    60,
			ShutdownGraceSec:  10,
			ReadHeaderTimeout: 5,
		},
		Routing: RoutingConfig{
			BaseURL:     "https://router.project-osrm.org",
			CacheTTLSec: 300,
		},
		Session: SessionConfig{
			RerouteThresholdMeters: 50,
			ProgressIntervalSec:    5,
			DebounceMS:             200,
			FixTimeoutSec:          10,
			ViewZoom:               16,
		},
		MQTTTopicPrefix: "fixes/",
	}
}

// Load reads the config file at path (missing file means defaults only),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment are a complete configuration.
		case err != nil:
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		}
	}

	if v := os.Getenv("OSRM_URL"); v != "" {
		cfg.Routing.BaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MQTT_URL"); v != "" {
		cfg.MQTTURL = v
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("load config: validate: %w", err)
	}

	return cfg, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Routing.CacheTTLSec) * time.Second
}
