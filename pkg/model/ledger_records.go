package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger record types
const (
	RecordTypeTrade        = "CARBON_CREDIT_TRADE"
	RecordTypeVerification = "ASSET_VERIFICATION"
)

// TradeRecord is the event appended to the ledger for every settlement.
type TradeRecord struct {
	Type          string          `json:"type"`
	TransactionID string          `json:"transaction_id"`
	Buyer         string          `json:"buyer"`
	Seller        string          `json:"seller"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Timestamp     time.Time       `json:"timestamp"`
}

// VerificationResult is the structured output of the external verification
// producer. The core records it verbatim and never interprets the scoring;
// Details carries whatever descriptive payload the producer attached.
type VerificationResult struct {
	Type          string          `json:"type"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Status        string          `json:"status"`
	CarbonCredits decimal.Decimal `json:"carbon_credits"`
	Details       json.RawMessage `json:"details,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// AuditEntry is one flattened ledger record for audit queries.
type AuditEntry struct {
	BlockIndex int64           `json:"block_index"`
	BlockHash  string          `json:"block_hash"`
	Timestamp  time.Time       `json:"timestamp"`
	Record     json.RawMessage `json:"record"`
}
