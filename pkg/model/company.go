package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is a registered marketplace participant.
// Trade statistics are mutated only by the settlement path.
type Company struct {
	ID                string          `json:"company_id"`
	Name              string          `json:"name"`
	Industry          string          `json:"industry"`
	Country           string          `json:"country"`
	Email             string          `json:"email"`
	SettlementAddress string          `json:"settlement_address"`
	Verified          bool            `json:"verified"`
	CreditsOwned      decimal.Decimal `json:"credits_owned"`
	CreditsSold       decimal.Decimal `json:"credits_sold"`
	TotalTrades       int             `json:"total_trades"`
	ReputationScore   int             `json:"reputation_score"`
	JoinedAt          time.Time       `json:"joined_at"`
}

// CompanyProfile is a Company together with its trading activity.
type CompanyProfile struct {
	Company
	Transactions   []Transaction `json:"transactions"`
	ActiveListings []Listing     `json:"active_listings"`
}
