package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Chain       string
	RPCURL      string
	Simulated   bool
	Multicall   string
	StableToken string

	ChunkSize    int
	Parallelism  int
	CallTimeout  time.Duration
	TopMode      string
	SnapshotMode string

	StaticPools      []string
	DiscoveryURL     string
	DiscoveryAPIKey  string
	DiscoveryTimeout time.Duration
	DiscoveryRetries int
	PostgresDSN      string
	RedisAddr        string
	RedisKey         string

	MetricsAddr  string
	Out          string
	Limit        int
	Pools        []string
	Seed         int64
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain", "ethereum")
	v.SetDefault("simulated", false)
	v.SetDefault("chunk-size", 50)
	v.SetDefault("parallelism", 1)
	v.SetDefault("call-timeout", 10*time.Second)
	v.SetDefault("top-mode", "lenient")
	v.SetDefault("snapshot-mode", "lenient")
	v.SetDefault("discovery-timeout", 10*time.Second)
	v.SetDefault("discovery-retries", 0)
	v.SetDefault("redis-key", "poolscope:pools:{token}")
	v.SetDefault("out", "")
	v.SetDefault("limit", 20)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Chain:            strings.ToLower(strings.TrimSpace(v.GetString("chain"))),
		RPCURL:           v.GetString("rpc"),
		Simulated:        v.GetBool("simulated"),
		Multicall:        v.GetString("multicall"),
		StableToken:      v.GetString("stable-token"),
		ChunkSize:        v.GetInt("chunk-size"),
		Parallelism:      v.GetInt("parallelism"),
		CallTimeout:      v.GetDuration("call-timeout"),
		TopMode:          v.GetString("top-mode"),
		SnapshotMode:     v.GetString("snapshot-mode"),
		StaticPools:      getStringSlice(v, "static-pools"),
		DiscoveryURL:     v.GetString("discovery-url"),
		DiscoveryAPIKey:  v.GetString("discovery-api-key"),
		DiscoveryTimeout: v.GetDuration("discovery-timeout"),
		DiscoveryRetries: v.GetInt("discovery-retries"),
		PostgresDSN:      v.GetString("pg-dsn"),
		RedisAddr:        v.GetString("redis-addr"),
		RedisKey:         v.GetString("redis-key"),
		MetricsAddr:      v.GetString("metrics-addr"),
		Out:              v.GetString("out"),
		Limit:            v.GetInt("limit"),
		Pools:            getStringSlice(v, "pool"),
		Seed:             v.GetInt64("seed"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	if c.Chain == "" {
		return fmt.Errorf("chain is required")
	}
	if !c.Simulated && c.RPCURL == "" {
		return fmt.Errorf("rpc url is required unless --simulated is set")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk-size must be greater than zero")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be greater than zero")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
