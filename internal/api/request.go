package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RegisterCompanyRequest is the payload to join the marketplace registry.
type RegisterCompanyRequest struct {
	Name              string `json:"name" example:"Amazonia Forestry"`
	Industry          string `json:"industry" example:"forestry"`
	Country           string `json:"country" example:"BR"`
	Email             string `json:"email,omitempty"`
	SettlementAddress string `json:"settlement_address,omitempty"`
}

// Validate checks required fields.
func (r RegisterCompanyRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// CreateListingRequest is the payload to post credits for sale.
type CreateListingRequest struct {
	SellerID     string            `json:"seller_id"`
	Amount       decimal.Decimal   `json:"amount" example:"150.5"`
	PricePerUnit decimal.Decimal   `json:"price_per_unit" example:"28.50"`
	Location     string            `json:"location,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Validate checks required fields.
func (r CreateListingRequest) Validate() error {
	if r.SellerID == "" {
		return fmt.Errorf("seller_id is required")
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}
	if !r.PricePerUnit.IsPositive() {
		return fmt.Errorf("price_per_unit must be greater than 0")
	}
	return nil
}

// PlaceOrderRequest is the payload to place a buy order.
type PlaceOrderRequest struct {
	BuyerID      string          `json:"buyer_id"`
	Amount       decimal.Decimal `json:"amount" example:"100"`
	MaxUnitPrice decimal.Decimal `json:"max_unit_price" example:"30.00"`
}

// Validate checks required fields.
func (r PlaceOrderRequest) Validate() error {
	if r.BuyerID == "" {
		return fmt.Errorf("buyer_id is required")
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}
	if !r.MaxUnitPrice.IsPositive() {
		return fmt.Errorf("max_unit_price must be greater than 0")
	}
	return nil
}

// InquiryRequest records buyer interest against a listing.
type InquiryRequest struct {
	BuyerID string `json:"buyer_id"`
}

// Validate checks required fields.
func (r InquiryRequest) Validate() error {
	if r.BuyerID == "" {
		return fmt.Errorf("buyer_id is required")
	}
	return nil
}

// RecordVerificationRequest carries an external verification result to be
// appended to the ledger.
type RecordVerificationRequest struct {
	Type          string          `json:"type,omitempty"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Status        string          `json:"status"`
	CarbonCredits decimal.Decimal `json:"carbon_credits"`
	Details       json.RawMessage `json:"details,omitempty"`
}

// Validate checks required fields.
func (r RecordVerificationRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
