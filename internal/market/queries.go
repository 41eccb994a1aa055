package market

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/GreenChain-Markets/exchange/internal/ledger"
	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// TransactionHistory returns settled transactions, newest last. An empty
// companyID returns everything; otherwise only trades where the company was
// buyer or seller.
func (e *Engine) TransactionHistory(companyID string) []model.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()

	if companyID == "" {
		out := make([]model.Transaction, len(e.transactions))
		copy(out, e.transactions)
		return out
	}

	var out []model.Transaction
	for _, tx := range e.transactions {
		if tx.BuyerID == companyID || tx.SellerID == companyID {
			out = append(out, tx)
		}
	}
	return out
}

// Stats computes an aggregate snapshot of the marketplace. The average unit
// price is defined as 0 when nothing has traded.
func (e *Engine) Stats() model.MarketStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	totalVolume := decimal.Zero
	totalAmount := decimal.Zero
	for _, tx := range e.transactions {
		totalVolume = totalVolume.Add(tx.TotalPrice)
		totalAmount = totalAmount.Add(tx.Amount)
	}

	avgPrice := decimal.Zero
	if totalAmount.IsPositive() {
		avgPrice = totalVolume.Div(totalAmount)
	}

	active := 0
	now := e.now().UTC()
	for _, l := range e.listings {
		e.refreshExpiryLocked(l, now)
		if l.Status == model.ListingStatusActive {
			active++
		}
	}

	return model.MarketStats{
		TotalParticipants: e.registry.Count(),
		ActiveListings:    active,
		TotalTransactions: len(e.transactions),
		TotalVolume:       totalVolume,
		TotalAmountTraded: totalAmount,
		AverageUnitPrice:  avgPrice,
		ComputedAt:        now,
	}
}

// CompanyProfile returns a company together with its transactions and its
// currently active listings.
func (e *Engine) CompanyProfile(companyID string) (model.CompanyProfile, error) {
	company, err := e.registry.Get(companyID)
	if err != nil {
		return model.CompanyProfile{}, fmt.Errorf("company profile: %w", err)
	}

	profile := model.CompanyProfile{
		Company:      company,
		Transactions: e.TransactionHistory(companyID),
	}

	e.mu.Lock()
	now := e.now().UTC()
	for _, l := range e.listings {
		e.refreshExpiryLocked(l, now)
		if l.SellerID == companyID && l.Status == model.ListingStatusActive {
			profile.ActiveListings = append(profile.ActiveListings, *l)
		}
	}
	e.mu.Unlock()

	return profile, nil
}

// RecordVerification stores the verification producer's structured result
// verbatim as a ledger record and returns the block holding it. The core
// never interprets the scoring, only preserves it.
func (e *Engine) RecordVerification(result model.VerificationResult) (ledger.Block, error) {
	if result.Type == "" {
		result.Type = model.RecordTypeVerification
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = e.now().UTC()
	}

	record, err := json.Marshal(result)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("record verification: %w", err)
	}

	block := e.ledger.Append(record)
	metrics.LedgerBlocksTotal.Inc()
	return block, nil
}

// ChainLength reports the number of ledger blocks, genesis included.
func (e *Engine) ChainLength() int {
	return e.ledger.Len()
}

// AuditLog flattens every ledger record into one entry per record with the
// holding block's index, hash, and timestamp.
func (e *Engine) AuditLog() []model.AuditEntry {
	var out []model.AuditEntry
	for _, b := range e.ledger.Blocks() {
		hash := ledger.BlockHash(b)
		for _, rec := range b.Records {
			out = append(out, model.AuditEntry{
				BlockIndex: b.Index,
				BlockHash:  hash[:16],
				Timestamp:  b.Timestamp,
				Record:     rec,
			})
		}
	}
	return out
}
