package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpgo/retirement-projector/internal/config"
	"github.com/rpgo/retirement-projector/internal/featureflag"
)

const ldInitWait = 5 * time.Second

// newRedisClient returns nil when no Redis address is configured.
func newRedisClient(cfg *config.ServerConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

// buildFlagSource creates the configured flag source. The returned closer releases it.
func buildFlagSource(cfg *config.ServerConfig, rdb *redis.Client) (featureflag.Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.FlagSource {
	case config.FlagSourceStatic:
		return featureflag.NewStaticSource(map[string]bool{cfg.FlagKey: cfg.FlagDefault}), noop, nil
	case config.FlagSourceRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis flag source needs REDIS_ADDR")
		}
		return featureflag.NewRedisSource(rdb, cfg.FlagPrefix), noop, nil
	case config.FlagSourceLaunchDarkly:
		src, err := featureflag.NewLaunchDarklySource(cfg.LDSDKKey, cfg.LDUserKey, cfg.LDCountry, ldInitWait)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown flag source %q", cfg.FlagSource)
	}
}
