package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GreenChain-Markets/exchange/pkg/model"
)

func newTestStore(t *testing.T) (*redisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &redisStore{redis: rdb}, mr
}

func TestSetAndGetStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	stats := model.MarketStats{
		TotalParticipants: 4,
		ActiveListings:    2,
		TotalTransactions: 7,
		TotalVolume:       decimal.NewFromFloat(2850.00),
		TotalAmountTraded: decimal.NewFromFloat(100),
		AverageUnitPrice:  decimal.NewFromFloat(28.50),
		ComputedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.SetStats(ctx, stats))

	got, err := s.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.TotalTransactions)
	assert.True(t, got.AverageUnitPrice.Equal(decimal.NewFromFloat(28.50)))
}

func TestGetStatsMiss(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetAndGetJSON(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	in := map[string]string{"listing_id": "LST-1000"}
	require.NoError(t, s.SetJSON(ctx, "k", in, time.Minute))

	var out map[string]string
	require.NoError(t, s.GetJSON(ctx, "k", &out))
	assert.Equal(t, in, out)
}

func TestStatsExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.SetStats(ctx, model.MarketStats{TotalTransactions: 1}))
	mr.FastForward(defaultTTL + time.Second)

	got, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHealthCheck(t *testing.T) {
	s, mr := newTestStore(t)
	assert.NoError(t, s.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, s.HealthCheck(context.Background()))
}
