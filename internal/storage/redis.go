package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the document under a single key. The save timestamp is
// written next to it in the same MULTI/EXEC block.
type RedisStorage struct {
	Redis *redis.Client
	Key   string
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Printf("INFO: Redis connection established at %s", cfg.Addr)
	return NewRedisStorage(rdb, cfg.Key), nil
}

func NewRedisStorage(rdb *redis.Client, key string) *RedisStorage {
	if key == "" {
		key = "roomchat:document"
	}
	return &RedisStorage{Redis: rdb, Key: key}
}

func (s *RedisStorage) savedAtKey() string { return s.Key + ":saved_at" }

func (s *RedisStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := s.Redis.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("load document", err)
	}
	return decodeSnapshot(data)
}

func (s *RedisStorage) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.Key, data, 0)
		pipe.Set(ctx, s.savedAtKey(), snap.SavedAt.Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Failed to save document to redis: %v", err)
		return apperr.StoreUnavailable("save document", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.Redis.Close()
}
