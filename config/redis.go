package config

import (
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// ProvideRedis returns nil when REDIS_URL is unset. The webhook replay
// marker degrades to a no-op in that case; reconciliation stays
// idempotent without it.
func ProvideRedis(config *Config) (*redis.Client, error) {
	if len(config.RedisUrl) == 0 {
		log.Info().Msg("No redis url configured, replay markers disabled")
		return nil, nil
	}

	options, err := redis.ParseURL(config.RedisUrl)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	_, err = client.Ping(client.Context()).Result()
	if err != nil {
		return nil, err
	}

	return client, nil
}
