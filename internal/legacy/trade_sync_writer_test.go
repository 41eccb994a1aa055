package legacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/pkg/model"
)

type mockExecutor struct {
	calls int
	args  []any
	fail  bool
}

func (m *mockExecutor) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.fail {
		return pgconn.CommandTag{}, errors.New("mock exec error")
	}
	m.calls++
	m.args = args
	return pgconn.CommandTag{}, nil
}

func sampleTransaction() *model.Transaction {
	return &model.Transaction{
		ID:              "TXN-3000",
		BuyerID:         "buyer-1",
		SellerID:        "seller-1",
		ListingID:       "LST-1000",
		Amount:          decimal.NewFromFloat(100),
		UnitPrice:       decimal.NewFromFloat(28.50),
		TotalPrice:      decimal.NewFromFloat(2850.00),
		Timestamp:       time.Now().UTC(),
		LedgerBlockHash: "abc123",
	}
}

func TestSyncTrade(t *testing.T) {
	db := &mockExecutor{}
	w := NewTradeSyncWriter(db, zap.NewNop(), "exchange-test")

	require.NoError(t, w.SyncTrade(context.Background(), sampleTransaction()))
	assert.Equal(t, 1, db.calls)
	assert.Equal(t, "TXN-3000", db.args[0])
	assert.Equal(t, "exchange-test", db.args[len(db.args)-1])
}

func TestSyncTradeNil(t *testing.T) {
	db := &mockExecutor{}
	w := NewTradeSyncWriter(db, zap.NewNop(), "exchange-test")

	require.NoError(t, w.SyncTrade(context.Background(), nil))
	assert.Equal(t, 0, db.calls)
}

func TestSyncTradeError(t *testing.T) {
	db := &mockExecutor{fail: true}
	w := NewTradeSyncWriter(db, zap.NewNop(), "exchange-test")

	assert.Error(t, w.SyncTrade(context.Background(), sampleTransaction()))
}
