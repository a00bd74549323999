package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"road-route-server/geosource"
	"road-route-server/routing"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address        string        `mapstructure:"address" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	Mode           string        `mapstructure:"mode" validate:"oneof=debug release test"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// RoutingConfig holds the engine thresholds, all in kilometres.
type RoutingConfig struct {
	SnapThresholdKm   float64 `mapstructure:"snap_threshold_km" validate:"gte=0"`
	BridgeThresholdKm float64 `mapstructure:"bridge_threshold_km" validate:"gte=0"`
	MinLegDistanceKm  float64 `mapstructure:"min_leg_distance_km" validate:"gte=0"`
	MaxBridgePairs    int     `mapstructure:"max_bridge_pairs" validate:"gte=0"`
	// SnapUnbounded snaps to the nearest node however far away it is.
	SnapUnbounded bool `mapstructure:"snap_unbounded"`
}

// SourceConfig selects where road geometries come from.
type SourceConfig struct {
	Kind            string        `mapstructure:"kind" validate:"oneof=file mongo"`
	File            string        `mapstructure:"file" validate:"required_if=Kind file"`
	MongoURI        string        `mapstructure:"mongo_uri" validate:"required_if=Kind mongo"`
	MongoDatabase   string        `mapstructure:"mongo_database" validate:"required_if=Kind mongo"`
	MongoCollection string        `mapstructure:"mongo_collection" validate:"required_if=Kind mongo"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// CacheConfig enables the graph snapshot. When disabled every request
// rebuilds the graph from the source.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Watch   bool          `mapstructure:"watch"`
}

type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests" validate:"gt=0"`
	Interval     time.Duration `mapstructure:"interval" validate:"gte=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gt=0,lte=1"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

// Config holds the entire server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Routing RoutingConfig `mapstructure:"routing"`
	Source  SourceConfig  `mapstructure:"source"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("routing.snap_threshold_km", 0.1)
	v.SetDefault("routing.bridge_threshold_km", 0.4)
	v.SetDefault("routing.min_leg_distance_km", 0.01)
	v.SetDefault("routing.max_bridge_pairs", 2500)
	v.SetDefault("routing.snap_unbounded", false)

	v.SetDefault("source.kind", "file")
	v.SetDefault("source.file", "data/map.geojson")
	v.SetDefault("source.mongo_uri", "")
	v.SetDefault("source.mongo_database", "geojson_db")
	v.SetDefault("source.mongo_collection", "map_data")
	v.SetDefault("source.timeout", 5*time.Second)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.watch", false)

	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.max_requests", 5)
	v.SetDefault("breaker.interval", 30*time.Second)
	v.SetDefault("breaker.timeout", 60*time.Second)
	v.SetDefault("breaker.failure_ratio", 0.6)
	v.SetDefault("breaker.min_requests", 5)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and ROUTE_* environment variables apply (ROUTE_SOURCE_KIND sets
// source.kind, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RoutingOptions converts the routing section to engine options.
func (c *Config) RoutingOptions() routing.Options {
	opts := routing.Options{
		SnapThresholdKm:   c.Routing.SnapThresholdKm,
		BridgeThresholdKm: c.Routing.BridgeThresholdKm,
		MinLegDistanceKm:  c.Routing.MinLegDistanceKm,
		MaxBridgePairs:    c.Routing.MaxBridgePairs,
	}
	if c.Routing.SnapUnbounded {
		opts.SnapThresholdKm = math.Inf(1)
	}
	return opts
}

// BreakerSettings converts the breaker section.
func (c *Config) BreakerSettings() geosource.BreakerSettings {
	return geosource.BreakerSettings{
		MaxRequests:  c.Breaker.MaxRequests,
		Interval:     c.Breaker.Interval,
		Timeout:      c.Breaker.Timeout,
		FailureRatio: c.Breaker.FailureRatio,
		MinRequests:  c.Breaker.MinRequests,
	}
}
