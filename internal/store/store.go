package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/pkg/model"
)

const (
	statsKey    = "exchange:market_stats"
	chainLenKey = "exchange:chain_length"
	defaultTTL  = 5 * time.Minute
	connectWait = 3 * time.Second
)

// Store caches marketplace read models in Redis so the request layer can
// serve hot aggregate queries without entering the engine's critical
// section. The in-memory core stays authoritative; this is a projection.
type Store interface {
	SetStats(ctx context.Context, stats model.MarketStats) error
	GetStats(ctx context.Context) (*model.MarketStats, error)
	SetChainLength(ctx context.Context, n int) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type redisStore struct {
	redis  *redis.Client
	logger *zap.Logger
}

// New connects a Redis-backed store.
func New(addr string, db int, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectWait)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &redisStore{redis: rdb, logger: logger}, nil
}

func (s *redisStore) SetStats(ctx context.Context, stats model.MarketStats) error {
	return s.SetJSON(ctx, statsKey, stats, defaultTTL)
}

// GetStats returns the cached snapshot, or nil on a cache miss.
func (s *redisStore) GetStats(ctx context.Context) (*model.MarketStats, error) {
	var stats model.MarketStats
	err := s.GetJSON(ctx, statsKey, &stats)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *redisStore) SetChainLength(ctx context.Context, n int) error {
	return s.redis.Set(ctx, chainLenKey, n, defaultTTL).Err()
}

func (s *redisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *redisStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *redisStore) HealthCheck(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.redis.Close()
}
