package legacy

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// DBExecutor is the minimal subset of pgxpool.Pool needed for writes.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TradeSyncWriter mirrors settled transactions into the reporting database.
// The in-memory core stays authoritative; this projection exists for the
// downstream reporting and compliance systems and runs off the event bus,
// outside the settlement critical section.
type TradeSyncWriter struct {
	db     DBExecutor
	logger *zap.Logger
	source string
}

// NewTradeSyncWriter constructs a writer into marketplace.t_trade.
// source identifies the writing service instance.
func NewTradeSyncWriter(db DBExecutor, logger *zap.Logger, source string) *TradeSyncWriter {
	return &TradeSyncWriter{
		db:     db,
		logger: logger,
		source: source,
	}
}

// SyncTrade upserts one settled transaction.
func (w *TradeSyncWriter) SyncTrade(ctx context.Context, tx *model.Transaction) error {
	if tx == nil {
		return nil
	}

	const query = `
		INSERT INTO marketplace.t_trade (
			s_id_trade,
			s_id_buyer,
			s_id_seller,
			s_id_listing,
			dec_amount,
			dec_unit_price,
			dec_total_price,
			s_ledger_block_hash,
			dt_settled,
			s_source
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (s_id_trade)
		DO UPDATE SET
			s_ledger_block_hash = EXCLUDED.s_ledger_block_hash,
			dt_settled = EXCLUDED.dt_settled;
	`

	_, err := w.db.Exec(ctx, query,
		tx.ID,
		tx.BuyerID,
		tx.SellerID,
		tx.ListingID,
		tx.Amount,
		tx.UnitPrice,
		tx.TotalPrice,
		tx.LedgerBlockHash,
		tx.Timestamp,
		w.source,
	)
	if err != nil {
		w.logger.Error("legacy.trade_sync_failed",
			zap.String("trade_id", tx.ID),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("legacy.trade_sync_upsert",
		zap.String("trade_id", tx.ID),
		zap.String("buyer_id", tx.BuyerID),
		zap.String("seller_id", tx.SellerID),
	)
	return nil
}
