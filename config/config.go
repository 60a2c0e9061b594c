package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicEvents string   `mapstructure:"topic_events"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type S3Config struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	PublicRead bool   `mapstructure:"public_read"`
}

type SuggestConfig struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Mongo   MongoConfig   `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	NATS    NATSConfig    `mapstructure:"nats"`
	S3      S3Config      `mapstructure:"s3"`
	Suggest SuggestConfig `mapstructure:"suggest"`

	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// derived values
	RequestTimeout time.Duration
	PresenceTTL    time.Duration
	PresignTTL     time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	// sensible defaults
	c.RequestTimeout = 10 * time.Second
	c.PresenceTTL = 2 * time.Minute
	c.PresignTTL = 15 * time.Minute
	if c.App.Port == 0 {
		c.App.Port = 8081
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "circlechat"
	}
	if c.Kafka.TopicEvents == "" {
		c.Kafka.TopicEvents = "chat.events"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 300
	}
	return &c, nil
}
