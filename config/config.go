package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/d60-Lab/activity-feed/internal/model"
)

// Config 全量配置，viper 从 config.yaml + 环境变量加载
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
	// 每秒请求数限流（0 表示关闭）
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	// driver: postgres | sqlite
	Driver string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	Workers      int           `mapstructure:"workers" validate:"min=1"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"min=1"`
	BackoffBase  time.Duration `mapstructure:"backoff_base"`
}

type FeedConfig struct {
	// 聚合窗口：同 (actor, type, group_key) 在窗口内合并
	AggregationWindow time.Duration `mapstructure:"aggregation_window" validate:"gt=0"`
	// 相关性半衰期
	HalfLife time.Duration `mapstructure:"half_life" validate:"gt=0"`
	// 各活动类型的基础权重，未列出的用 default_type_weight
	TypeWeights       map[string]float64 `mapstructure:"type_weights"`
	DefaultTypeWeight float64            `mapstructure:"default_type_weight"`
	// 扇出分页与批量写入大小
	FanoutPageSize  int `mapstructure:"fanout_page_size" validate:"min=1"`
	FanoutBatchSize int `mapstructure:"fanout_batch_size" validate:"min=1"`
	FanoutWorkers   int `mapstructure:"fanout_workers" validate:"min=1"`
	// 订阅者列表缓存 TTL（0 表示关闭缓存）
	SubscriberCacheTTL time.Duration `mapstructure:"subscriber_cache_ttl"`
	DefaultPageSize    int           `mapstructure:"default_page_size" validate:"min=1"`
	MaxPageSize        int           `mapstructure:"max_page_size" validate:"min=1"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TypeWeight 返回某活动类型的基础权重
func (f FeedConfig) TypeWeight(t model.ActivityType) float64 {
	if w, ok := f.TypeWeights[string(t)]; ok {
		return w
	}
	return f.DefaultTypeWeight
}

// Load 读取并校验配置。查找顺序：$CONFIG_PATH > ./config > .
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$CONFIG_PATH")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 缺省文件允许，全部走默认值/环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:feed.db?_fk=1")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.poll_interval", 50*time.Millisecond)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.backoff_base", time.Second)
	v.SetDefault("feed.aggregation_window", 24*time.Hour)
	v.SetDefault("feed.half_life", 24*time.Hour)
	v.SetDefault("feed.default_type_weight", 0.5)
	v.SetDefault("feed.type_weights", map[string]float64{
		string(model.TypeUserFollow):  1.0,
		string(model.TypePostCreate):  1.0,
		string(model.TypeUserMention): 0.9,
		string(model.TypePostComment): 0.6,
		string(model.TypePostLike):    0.4,
	})
	v.SetDefault("feed.fanout_page_size", 500)
	v.SetDefault("feed.fanout_batch_size", 500)
	v.SetDefault("feed.fanout_workers", 8)
	v.SetDefault("feed.subscriber_cache_ttl", 5*time.Minute)
	v.SetDefault("feed.default_page_size", 20)
	v.SetDefault("feed.max_page_size", 100)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service", "activity-feed")
	v.SetDefault("log.level", "info")
}
