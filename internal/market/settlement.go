package market

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/internal/ledger"
	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// settleLocked applies one settlement as an atomic unit: registry credits,
// listing decrement, ledger record, and transaction history all change
// together or not at all. Caller holds e.mu and has already validated that
// the listing is active, available_amount covers amount, and the buyer
// exists.
//
// Fallible steps (record serialization, registry lookup) run before the
// first mutation; everything after the registry update cannot fail, so no
// partial application is ever observable.
func (e *Engine) settleLocked(buyer model.Company, l *model.Listing, amount decimal.Decimal) (model.Transaction, error) {
	seller, err := e.registry.Get(l.SellerID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("settle: seller: %w", err)
	}

	unitPrice := l.PricePerUnit
	totalPrice := amount.Mul(unitPrice)
	txID := fmt.Sprintf("TXN-%d", e.txSeq)
	now := e.now().UTC()

	record, err := json.Marshal(model.TradeRecord{
		Type:          model.RecordTypeTrade,
		TransactionID: txID,
		Buyer:         buyer.Name,
		Seller:        seller.Name,
		Amount:        amount,
		Price:         unitPrice,
		TotalValue:    totalPrice,
		Timestamp:     now,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("settle: encode trade record: %w", err)
	}

	if err := e.registry.ApplyTrade(buyer.ID, seller.ID, amount); err != nil {
		return model.Transaction{}, fmt.Errorf("settle: %w", err)
	}

	e.txSeq++
	l.AvailableAmount = l.AvailableAmount.Sub(amount)
	if l.AvailableAmount.IsZero() {
		l.Status = model.ListingStatusSoldOut
	}

	block := e.ledger.Append(record)
	metrics.LedgerBlocksTotal.Inc()

	tx := model.Transaction{
		ID:              txID,
		BuyerID:         buyer.ID,
		BuyerName:       buyer.Name,
		SellerID:        seller.ID,
		SellerName:      seller.Name,
		ListingID:       l.ID,
		Amount:          amount,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		Timestamp:       now,
		LedgerBlockHash: ledger.BlockHash(block),
	}
	e.transactions = append(e.transactions, tx)

	metrics.TradesSettledTotal.Inc()
	e.logger.Info("market.settlement_recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("listing_id", l.ID),
		zap.String("amount", amount.String()),
		zap.String("total_price", totalPrice.String()),
		zap.Int64("block_index", block.Index),
	)
	e.publish(model.TradeSettledEvent{Transaction: tx, BlockIndex: block.Index})

	return tx, nil
}
