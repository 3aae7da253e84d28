package redis

import (
	"context"
	"taskboard/config"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// New connects to the primary Redis that backs the list caches and the rate
// limiter. The server does not start without it.
func New(cfg *config.Config) *goRedis.Client {
	primary := cfg.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     primary.Addr(),
		Password: primary.Password,
		DB:       primary.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", primary.Addr()).Msg("Failed to connect to Redis")
	}

	log.Info().Str("addr", primary.Addr()).Int("db", primary.DB).Msg("Connected to Redis")

	return client
}
