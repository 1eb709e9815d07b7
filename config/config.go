package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 全局配置（config.yaml + PULSECHAT_* 环境变量覆盖）
type Config struct {
	Server struct {
		Port int    `mapstructure:"port"`
		Mode string `mapstructure:"mode"` // debug, release, test
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Database struct {
		Driver string `mapstructure:"driver"` // sqlite, postgres
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Ledger struct {
		Path string `mapstructure:"path"` // leveldb 目录；为空则用内存存储
	} `mapstructure:"ledger"`

	Chain struct {
		Driver   string `mapstructure:"driver"` // evm, memory
		RPCURL   string `mapstructure:"rpc_url"`
		ChainID  int64  `mapstructure:"chain_id"`
		Contract string `mapstructure:"contract"`
		Token    string `mapstructure:"token"`
	} `mapstructure:"chain"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		TokenTTL  int    `mapstructure:"token_ttl"` // 秒
		NonceTTL  int    `mapstructure:"nonce_ttl"` // 秒
	} `mapstructure:"auth"`

	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`

	Telemetry struct {
		Endpoint string `mapstructure:"endpoint"` // OTLP HTTP，为空则不上报
	} `mapstructure:"telemetry"`

	Indexer struct {
		PollIntervalMS int `mapstructure:"poll_interval_ms"`
		BatchSize      int `mapstructure:"batch_size"`
	} `mapstructure:"indexer"`

	Refresher struct {
		DelayMS   int `mapstructure:"delay_ms"`
		QueueSize int `mapstructure:"queue_size"`
	} `mapstructure:"refresher"`
}

// Load 读取配置文件并应用环境变量覆盖
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PULSECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pulsechat.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("ledger.path", "")
	v.SetDefault("chain.driver", "memory")
	v.SetDefault("auth.token_ttl", 86400)
	v.SetDefault("auth.nonce_ttl", 300)
	v.SetDefault("indexer.poll_interval_ms", 5000)
	v.SetDefault("indexer.batch_size", 50)
	v.SetDefault("refresher.delay_ms", 2000)
	v.SetDefault("refresher.queue_size", 10000)

	if err := v.ReadInConfig(); err != nil {
		// 无配置文件时允许纯默认值 + 环境变量启动
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
