package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus constants
const (
	ListingStatusActive  = "ACTIVE"
	ListingStatusSoldOut = "SOLD_OUT"
	ListingStatusExpired = "EXPIRED"
)

// OrderStatus constants
const (
	OrderStatusPending   = "PENDING"
	OrderStatusMatched   = "MATCHED"
	OrderStatusUnmatched = "UNMATCHED"
)

// Listing is an offer to sell a quantity of carbon credits at a fixed unit price.
type Listing struct {
	ID              string            `json:"listing_id"`
	SellerID        string            `json:"seller_id"`
	SellerName      string            `json:"seller_name"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	AvailableAmount decimal.Decimal   `json:"available_amount"`
	PricePerUnit    decimal.Decimal   `json:"price_per_unit"`
	TotalValue      decimal.Decimal   `json:"total_value"`
	Status          string            `json:"status"`
	Location        string            `json:"location"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
	InterestedCount int               `json:"interested_count"`
}

// BuyOrder is a request to acquire credits at or below a ceiling price.
// It transitions at most once out of PENDING, during the placement call.
type BuyOrder struct {
	ID               string          `json:"order_id"`
	BuyerID          string          `json:"buyer_id"`
	BuyerName        string          `json:"buyer_name"`
	RequestedAmount  decimal.Decimal `json:"requested_amount"`
	MaxUnitPrice     decimal.Decimal `json:"max_unit_price"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	MatchedListingID string          `json:"matched_listing_id,omitempty"`
}

// Transaction is an immutable settlement record. LedgerBlockHash points at
// the ledger block holding this settlement's trade record.
type Transaction struct {
	ID              string          `json:"transaction_id"`
	BuyerID         string          `json:"buyer_id"`
	BuyerName       string          `json:"buyer_name"`
	SellerID        string          `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	ListingID       string          `json:"listing_id"`
	Amount          decimal.Decimal `json:"amount"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Timestamp       time.Time       `json:"timestamp"`
	LedgerBlockHash string          `json:"ledger_block_hash"`
}

// ListingFilter narrows active-listing queries. Conditions are conjunctive;
// nil fields are ignored.
type ListingFilter struct {
	MaxPrice  *decimal.Decimal
	MinAmount *decimal.Decimal
}

// InquiryContact is what the notification collaborator needs to reach a seller.
// The core returns this data; it never performs delivery itself.
type InquiryContact struct {
	ListingID   string `json:"listing_id"`
	SellerID    string `json:"seller_id"`
	SellerName  string `json:"seller_name"`
	SellerEmail string `json:"seller_email"`
	Location    string `json:"location"`
}

// MarketStats is an aggregate snapshot of marketplace activity.
type MarketStats struct {
	TotalParticipants int             `json:"total_participants"`
	ActiveListings    int             `json:"active_listings_count"`
	TotalTransactions int             `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	TotalAmountTraded decimal.Decimal `json:"total_amount_traded"`
	AverageUnitPrice  decimal.Decimal `json:"average_unit_price"`
	ComputedAt        time.Time       `json:"computed_at"`
}
