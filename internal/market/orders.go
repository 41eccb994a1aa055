package market

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// PlaceBuyOrder creates a buy order and immediately attempts to match it.
// The match policy is: among active listings with enough available amount
// and a unit price at or below the buyer's ceiling, pick the cheapest;
// break price ties by earliest creation, then by insertion order. A single
// listing must cover the whole request; amounts are never split across
// listings. An order that finds no candidate becomes UNMATCHED and is never
// re-evaluated.
//
// Order creation, matching, and settlement run inside one critical section,
// so concurrent orders cannot double-spend a listing's available amount.
func (e *Engine) PlaceBuyOrder(buyerID string, requestedAmount, maxUnitPrice decimal.Decimal) (model.BuyOrder, error) {
	if !requestedAmount.IsPositive() {
		return model.BuyOrder{}, fmt.Errorf("place order: amount must be positive, got %s: %w",
			requestedAmount, model.ErrInvalidArgument)
	}
	if !maxUnitPrice.IsPositive() {
		return model.BuyOrder{}, fmt.Errorf("place order: max price must be positive, got %s: %w",
			maxUnitPrice, model.ErrInvalidArgument)
	}

	buyer, err := e.registry.Get(buyerID)
	if err != nil {
		return model.BuyOrder{}, fmt.Errorf("place order: %w", err)
	}

	start := time.Now()
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		metrics.ObserveSince(metrics.MatchDuration, start)
	}()

	now := e.now().UTC()
	order := &model.BuyOrder{
		ID:              fmt.Sprintf("ORD-%d", e.orderSeq),
		BuyerID:         buyer.ID,
		BuyerName:       buyer.Name,
		RequestedAmount: requestedAmount,
		MaxUnitPrice:    maxUnitPrice,
		Status:          model.OrderStatusPending,
		CreatedAt:       now,
	}
	e.orderSeq++
	e.orders = append(e.orders, order)

	best := e.bestCandidateLocked(requestedAmount, maxUnitPrice, now)
	if best == nil {
		order.Status = model.OrderStatusUnmatched
		metrics.OrdersUnmatchedTotal.Inc()
		e.logger.Info("market.order_unmatched",
			zap.String("order_id", order.ID),
			zap.String("buyer_id", buyer.ID),
			zap.String("amount", requestedAmount.String()),
			zap.String("max_price", maxUnitPrice.String()),
		)
		return *order, nil
	}

	// The buyer pays the listing's posted price, never their own ceiling.
	tx, err := e.settleLocked(buyer, best, requestedAmount)
	if err != nil {
		order.Status = model.OrderStatusUnmatched
		return model.BuyOrder{}, fmt.Errorf("place order %s: %w", order.ID, err)
	}

	order.Status = model.OrderStatusMatched
	order.MatchedListingID = best.ID

	e.logger.Info("market.order_matched",
		zap.String("order_id", order.ID),
		zap.String("listing_id", best.ID),
		zap.String("transaction_id", tx.ID),
		zap.String("unit_price", tx.UnitPrice.String()),
	)

	return *order, nil
}

// Order returns a buy order by id.
func (e *Engine) Order(id string) (model.BuyOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, o := range e.orders {
		if o.ID == id {
			return *o, nil
		}
	}
	return model.BuyOrder{}, fmt.Errorf("order %s: %w", id, model.ErrNotFound)
}

// bestCandidateLocked scans listings in insertion order and keeps the
// strictly better candidate, so the earliest insertion wins all remaining
// ties. Caller holds e.mu.
func (e *Engine) bestCandidateLocked(amount, maxPrice decimal.Decimal, now time.Time) *model.Listing {
	var best *model.Listing
	for _, l := range e.listings {
		e.refreshExpiryLocked(l, now)
		if l.Status != model.ListingStatusActive {
			continue
		}
		if l.AvailableAmount.LessThan(amount) || l.PricePerUnit.GreaterThan(maxPrice) {
			continue
		}
		if best == nil ||
			l.PricePerUnit.LessThan(best.PricePerUnit) ||
			(l.PricePerUnit.Equal(best.PricePerUnit) && l.CreatedAt.Before(best.CreatedAt)) {
			best = l
		}
	}
	return best
}
