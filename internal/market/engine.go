package market

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/internal/ledger"
	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/internal/registry"
	"github.com/GreenChain-Markets/exchange/pkg/eventbus"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// ListingTTL is the fixed horizon after which a listing expires.
const ListingTTL = 30 * 24 * time.Hour

// Engine owns listings, buy orders, and the transaction history. It matches
// incoming buy orders against active listings and drives settlement against
// the registry and the ledger.
//
// One mutex guards the whole match-and-settle sequence: two concurrent
// orders can never both observe the same available amount and over-allocate
// a listing.
type Engine struct {
	mu       sync.Mutex
	registry *registry.Registry
	ledger   *ledger.Ledger
	bus      *eventbus.EventBus
	logger   *zap.Logger
	now      func() time.Time

	listings     []*model.Listing
	orders       []*model.BuyOrder
	transactions []model.Transaction

	listingSeq int64
	orderSeq   int64
	txSeq      int64
}

// NewEngine wires a matching engine to its registry and ledger. bus may be
// nil; domain events are then dropped.
func NewEngine(reg *registry.Registry, led *ledger.Ledger, bus *eventbus.EventBus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		registry:   reg,
		ledger:     led,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
		listingSeq: 1000,
		orderSeq:   2000,
		txSeq:      3000,
	}
}

// CreateListing posts a new sell listing for a registered company.
func (e *Engine) CreateListing(sellerID string, totalAmount, pricePerUnit decimal.Decimal,
	metadata map[string]string, location, description string) (model.Listing, error) {

	if !totalAmount.IsPositive() {
		return model.Listing{}, fmt.Errorf("create listing: amount must be positive, got %s: %w",
			totalAmount, model.ErrInvalidArgument)
	}
	if !pricePerUnit.IsPositive() {
		return model.Listing{}, fmt.Errorf("create listing: price must be positive, got %s: %w",
			pricePerUnit, model.ErrInvalidArgument)
	}

	seller, err := e.registry.Get(sellerID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("create listing: %w", err)
	}

	e.mu.Lock()
	now := e.now().UTC()
	l := &model.Listing{
		ID:              fmt.Sprintf("LST-%d", e.listingSeq),
		SellerID:        seller.ID,
		SellerName:      seller.Name,
		TotalAmount:     totalAmount,
		AvailableAmount: totalAmount,
		PricePerUnit:    pricePerUnit,
		TotalValue:      totalAmount.Mul(pricePerUnit),
		Status:          model.ListingStatusActive,
		Location:        location,
		Description:     description,
		Metadata:        metadata,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ListingTTL),
	}
	e.listingSeq++
	e.listings = append(e.listings, l)
	listing := *l
	e.mu.Unlock()

	e.logger.Info("market.listing_created",
		zap.String("listing_id", listing.ID),
		zap.String("seller_id", listing.SellerID),
		zap.String("amount", listing.TotalAmount.String()),
		zap.String("price", listing.PricePerUnit.String()),
	)
	e.publish(model.ListingCreatedEvent{Listing: listing})

	return listing, nil
}

// ActiveListings returns active listings matching the filter, most recent
// first. Filter conditions are conjunctive; a nil filter returns everything.
func (e *Engine) ActiveListings(filter *model.ListingFilter) []model.Listing {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	var out []model.Listing
	for _, l := range e.listings {
		e.refreshExpiryLocked(l, now)
		if l.Status != model.ListingStatusActive {
			continue
		}
		if filter != nil {
			if filter.MaxPrice != nil && l.PricePerUnit.GreaterThan(*filter.MaxPrice) {
				continue
			}
			if filter.MinAmount != nil && l.AvailableAmount.LessThan(*filter.MinAmount) {
				continue
			}
		}
		out = append(out, *l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Listing returns a single listing by id, regardless of status.
func (e *Engine) Listing(id string) (model.Listing, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if l := e.findListingLocked(id); l != nil {
		return *l, nil
	}
	return model.Listing{}, fmt.Errorf("listing %s: %w", id, model.ErrNotFound)
}

// RecordInquiry registers buyer interest against a listing and returns the
// seller's contact data for the notification collaborator. The core only
// records and returns; it never delivers anything.
func (e *Engine) RecordInquiry(listingID, buyerID string) (model.InquiryContact, error) {
	buyer, err := e.registry.Get(buyerID)
	if err != nil {
		return model.InquiryContact{}, fmt.Errorf("record inquiry: buyer: %w", err)
	}

	e.mu.Lock()
	l := e.findListingLocked(listingID)
	if l == nil {
		e.mu.Unlock()
		return model.InquiryContact{}, fmt.Errorf("record inquiry: listing %s: %w", listingID, model.ErrNotFound)
	}
	l.InterestedCount++
	sellerID := l.SellerID
	location := l.Location
	e.mu.Unlock()

	seller, err := e.registry.Get(sellerID)
	if err != nil {
		return model.InquiryContact{}, fmt.Errorf("record inquiry: seller: %w", err)
	}

	contact := model.InquiryContact{
		ListingID:   listingID,
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		Location:    location,
	}

	metrics.InquiriesTotal.Inc()
	e.logger.Info("market.inquiry_recorded",
		zap.String("listing_id", listingID),
		zap.String("buyer_id", buyer.ID),
	)
	e.publish(model.InquiryRecordedEvent{
		Contact:   contact,
		BuyerID:   buyer.ID,
		BuyerName: buyer.Name,
	})

	return contact, nil
}

// findListingLocked returns the stored listing or nil. Caller holds e.mu.
func (e *Engine) findListingLocked(id string) *model.Listing {
	for _, l := range e.listings {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// refreshExpiryLocked flips an active listing past its horizon to EXPIRED.
// Caller holds e.mu.
func (e *Engine) refreshExpiryLocked(l *model.Listing, now time.Time) {
	if l.Status == model.ListingStatusActive && now.After(l.ExpiresAt) {
		l.Status = model.ListingStatusExpired
		e.logger.Info("market.listing_expired", zap.String("listing_id", l.ID))
	}
}

func (e *Engine) publish(event interface{}) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}
