package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alphagov/scene-router/dictionary"
	"github.com/alphagov/scene-router/scenes"
)

var ErrNoDictionarySource = errors.New("no dictionary source configured")

// DictionarySource says where the cut scene dictionary lives. The first
// non-empty of File, RedisAddr and DatabaseURL is used.
type DictionarySource struct {
	File        string
	RedisAddr   string
	DatabaseURL string
}

// OpenDictionary connects to the configured cut scene dictionary. The
// returned function releases the connection.
func OpenDictionary(ctx context.Context, src DictionarySource, logger zerolog.Logger) (scenes.Dictionary, func(), error) {
	switch {
	case src.File != "":
		logger.Info().Str("path", src.File).Msg("reading scene dictionary from file")
		return dictionary.NewFile(src.File, scenes.DictionaryName), func() {}, nil

	case src.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: src.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("addr", src.RedisAddr).Msg("reading scene dictionary from redis")

		return dictionary.NewRedis(client, scenes.DictionaryName), func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close redis client")
			}
		}, nil

	case src.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, src.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
		}
		logger.Info().Msg("postgres connection pool created")

		return dictionary.NewPostgres(pool, scenes.DictionaryName), pool.Close, nil
	}

	return nil, nil, ErrNoDictionarySource
}
