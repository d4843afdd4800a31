package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type GoogleConfig struct {
	PlacesAPIKey   string
	SearchAPIKey   string
	SearchEngineID string
	EntityAPIKey   string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	Region        string
	PublicBaseURL string
}

type CacheConfig struct {
	// Backend selects the result cache store: "file" or "redis".
	Backend string
	Dir     string
	MaxAge  time.Duration
	Redis   RedisConfig
}

type PipelineConfig struct {
	Delay            time.Duration
	QualityThreshold int
	GallerySize      int
	CallTimeout      time.Duration
	UserAgent        string
}

type AppConfig struct {
	Environment string
	Google      GoogleConfig
	Postgres    PostgresConfig
	Storage     StorageConfig
	Cache       CacheConfig
	Pipeline    PipelineConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SOLAIMG")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The search and entity APIs accept the Places key when no dedicated
	// key is configured.
	if cfg.Google.SearchAPIKey == "" {
		cfg.Google.SearchAPIKey = cfg.Google.PlacesAPIKey
	}
	if cfg.Google.EntityAPIKey == "" {
		cfg.Google.EntityAPIKey = cfg.Google.PlacesAPIKey
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("storage.bucket", "sola-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", ".image-cache")
	v.SetDefault("cache.maxage", "72h")
	v.SetDefault("cache.redis.addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("pipeline.delay", "500ms")
	v.SetDefault("pipeline.qualitythreshold", 55)
	v.SetDefault("pipeline.gallerysize", 4)
	v.SetDefault("pipeline.calltimeout", "15s")
	v.SetDefault("pipeline.useragent", "Sola-ImagePipeline/1.0")
}
